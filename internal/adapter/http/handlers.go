package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/ihirwe/event-locator/internal/geo"
	"github.com/ihirwe/event-locator/internal/service"
	"github.com/ihirwe/event-locator/internal/store"
)

// userHeader identifies the caller. Authentication is handled upstream; the
// gateway injects the verified user ID into this header.
const userHeader = "X-User-ID"

type handlers struct {
	svc     *service.EventService
	catalog *geo.CatalogLoader
	logger  *slog.Logger
}

type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
	StartTime   time.Time `json:"start_time"`
}

type updateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Country     *string    `json:"country"`
	City        *string    `json:"city"`
	Venue       *string    `json:"venue"`
	StartTime   *time.Time `json:"start_time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userHeader+" header")
		return
	}

	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ev, err := h.svc.Create(r.Context(), service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Country:     req.Country,
		City:        req.City,
		Venue:       req.Venue,
		StartTime:   req.StartTime,
		CreatorID:   userID,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// searchEvents handles GET /events/search?field=city&q=kigali&radius_km=25&categories=music,sports
func (h *handlers) searchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radiusKm := 0.0
	if raw := q.Get("radius_km"); raw != "" {
		var err error
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "radius_km must be a number")
			return
		}
	}

	var categories []string
	if raw := q.Get("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	field := store.TextField(q.Get("field"))
	if field == "" {
		field = store.FieldCity
	}

	events, err := h.svc.Search(r.Context(), store.SearchRequest{
		Field:      field,
		Pattern:    q.Get("q"),
		RadiusKm:   radiusKm,
		Categories: categories,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeEvents(w, events)
}

// listEvents handles GET /events?creator_id=...
func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListByCreator(r.Context(), r.URL.Query().Get("creator_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeEvents(w, events)
}

func (h *handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *handlers) updateEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userHeader+" header")
		return
	}

	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ev, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), userID, service.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Country:     req.Country,
		City:        req.City,
		Venue:       req.Venue,
		StartTime:   req.StartTime,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *handlers) deleteEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing "+userHeader+" header")
		return
	}

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getCatalog handles GET /catalog, serving the country and city lists that
// power location pickers.
func (h *handlers) getCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.catalog.Load(r.Context())
	if err != nil {
		h.logger.Error("catalog load failed", "error", err)
		writeError(w, http.StatusBadGateway, "location catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "event belongs to another user")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeEvents returns an empty array rather than null for client
// compatibility.
func writeEvents(w http.ResponseWriter, events []domain.Event) {
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
