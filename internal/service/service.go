// Package service implements the event lifecycle: creation with location
// resolution, search, ownership-checked updates, and notification fan-out.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ihirwe/event-locator/internal/domain"
	"github.com/ihirwe/event-locator/internal/notify"
	"github.com/ihirwe/event-locator/internal/store"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrInvalidInput wraps all request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when a caller touches an event they do not own.
	ErrForbidden = errors.New("event belongs to another user")
)

// CreateEventInput is a request to register a new event.
type CreateEventInput struct {
	Title       string
	Description string
	Category    string
	Country     string
	City        string
	Venue       string
	StartTime   time.Time
	CreatorID   string
}

// UpdateEventInput carries the fields to change. Nil means "leave as is".
type UpdateEventInput struct {
	Title       *string
	Description *string
	Category    *string
	Country     *string
	City        *string
	Venue       *string
	StartTime   *time.Time
}

// EventService is the core application service over the event store.
type EventService struct {
	store     store.EventStore
	resolver  store.CoordinateResolver
	queries   *store.QueryBuilder
	publisher notify.Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
}

func NewEventService(
	st store.EventStore,
	resolver store.CoordinateResolver,
	publisher notify.Publisher,
	clock clockwork.Clock,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		store:     st,
		resolver:  resolver,
		queries:   store.NewQueryBuilder(resolver),
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Create registers an event, resolving its place to a coordinate. Location
// resolution never fails, so creation only errors on validation or storage.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if err := validateCreate(in); err != nil {
		return domain.Event{}, err
	}

	now := s.clock.Now().UTC()
	ev := domain.Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Country:     strings.TrimSpace(in.Country),
		City:        strings.TrimSpace(in.City),
		Venue:       strings.TrimSpace(in.Venue),
		StartTime:   in.StartTime.UTC(),
		CreatorID:   in.CreatorID,
		CreatedAt:   now,
	}
	ev.Location = s.resolver.Resolve(ctx, ev.Place().Query())

	if err := s.store.InsertOne(ctx, ev); err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}

	s.publish(ctx, ev)

	ev.Status = domain.ClassifyStatus(ev.StartTime, now)
	return ev, nil
}

// Search runs a text search, optionally constrained by radius and categories.
func (s *EventService) Search(ctx context.Context, req store.SearchRequest) ([]domain.Event, error) {
	if !req.Field.Valid() {
		return nil, fmt.Errorf("%w: unknown search field %q", ErrInvalidInput, req.Field)
	}
	if strings.TrimSpace(req.Pattern) == "" {
		return nil, fmt.Errorf("%w: search pattern is required", ErrInvalidInput)
	}
	if req.RadiusKm < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative", ErrInvalidInput)
	}

	filter := s.queries.Build(ctx, req)
	events, err := s.store.FindMany(ctx, filter, store.SortByStartTime)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return s.classify(events), nil
}

// ListByCreator returns a user's events ordered by start time.
func (s *EventService) ListByCreator(ctx context.Context, creatorID string) ([]domain.Event, error) {
	if creatorID == "" {
		return nil, fmt.Errorf("%w: creator id is required", ErrInvalidInput)
	}
	events, err := s.store.FindMany(ctx, store.Filter{CreatorID: creatorID}, store.SortByStartTime)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.classify(events), nil
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (domain.Event, error) {
	ev, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	ev.Status = domain.ClassifyStatus(ev.StartTime, s.clock.Now().UTC())
	return ev, nil
}

// Update applies a partial update after an ownership check. Changing any part
// of the place re-resolves the stored coordinate.
func (s *EventService) Update(ctx context.Context, id, requesterID string, in UpdateEventInput) (domain.Event, error) {
	ev, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if ev.CreatorID != requesterID {
		return domain.Event{}, ErrForbidden
	}

	fields := store.Fields{}
	placeChanged := false

	setString := func(key string, val *string, dst *string) {
		if val == nil {
			return
		}
		*dst = strings.TrimSpace(*val)
		fields[key] = *dst
	}
	setString("title", in.Title, &ev.Title)
	setString("description", in.Description, &ev.Description)
	if in.Category != nil {
		ev.Category = strings.ToLower(strings.TrimSpace(*in.Category))
		fields["category"] = ev.Category
	}
	for _, f := range []struct {
		key string
		val *string
		dst *string
	}{
		{"country", in.Country, &ev.Country},
		{"city", in.City, &ev.City},
		{"venue", in.Venue, &ev.Venue},
	} {
		if f.val != nil {
			setString(f.key, f.val, f.dst)
			placeChanged = true
		}
	}
	if in.StartTime != nil {
		ev.StartTime = in.StartTime.UTC()
		fields["start_time"] = ev.StartTime
	}

	if len(fields) == 0 {
		return domain.Event{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	if placeChanged {
		ev.Location = s.resolver.Resolve(ctx, ev.Place().Query())
		fields["location"] = ev.Location
	}

	now := s.clock.Now().UTC()
	ev.UpdatedAt = &now
	fields["updated_at"] = now

	if err := s.store.UpdateOne(ctx, id, fields); err != nil {
		return domain.Event{}, fmt.Errorf("update event: %w", err)
	}

	ev.Status = domain.ClassifyStatus(ev.StartTime, now)
	return ev, nil
}

// Delete removes an event after an ownership check.
func (s *EventService) Delete(ctx context.Context, id, requesterID string) error {
	ev, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if ev.CreatorID != requesterID {
		return ErrForbidden
	}
	return s.store.DeleteOne(ctx, id)
}

// publish sends the creation notification. Delivery is best effort: a broker
// outage must not fail the write that already happened.
func (s *EventService) publish(ctx context.Context, ev domain.Event) {
	if err := s.publisher.Publish(ctx, notify.For(ev)); err != nil {
		s.logger.Warn("publish notification failed", "event_id", ev.ID, "error", err)
	}
}

func (s *EventService) classify(events []domain.Event) []domain.Event {
	now := s.clock.Now().UTC()
	for i := range events {
		events[i].Status = domain.ClassifyStatus(events[i].StartTime, now)
	}
	return events
}

func validateCreate(in CreateEventInput) error {
	required := map[string]string{
		"title":      in.Title,
		"category":   in.Category,
		"country":    in.Country,
		"city":       in.City,
		"venue":      in.Venue,
		"creator id": in.CreatorID,
	}
	for name, val := range required {
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
		}
	}
	if in.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}
	return nil
}
