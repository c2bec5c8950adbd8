package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/geo/s2"
	"github.com/ihirwe/event-locator/internal/domain"
)

// earthRadiusMeters is the mean earth radius used to convert the angular
// distance between two points into meters.
const earthRadiusMeters = 6371008.8

// MemoryStore is a mutex-guarded in-memory EventStore. It backs tests and
// demo mode, where no database is configured. Proximity filtering uses S2
// great-circle distance so it matches the earthdistance semantics of the
// Postgres store.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]domain.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]domain.Event)}
}

func (s *MemoryStore) InsertOne(_ context.Context, ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
	return nil
}

func (s *MemoryStore) FindMany(_ context.Context, f Filter, srt Sort) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Event
	for _, ev := range s.events {
		if matches(ev, f) {
			out = append(out, ev)
		}
	}

	if srt.Field == "start_time" {
		sort.Slice(out, func(i, j int) bool {
			if srt.Desc {
				return out[i].StartTime.After(out[j].StartTime)
			}
			return out[i].StartTime.Before(out[j].StartTime)
		})
	}
	return out, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return domain.Event{}, ErrNotFound
	}
	return ev, nil
}

func (s *MemoryStore) UpdateOne(_ context.Context, id string, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	applyFields(&ev, fields)
	s.events[id] = ev
	return nil
}

func (s *MemoryStore) DeleteOne(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func matches(ev domain.Event, f Filter) bool {
	if f.CreatorID != "" && ev.CreatorID != f.CreatorID {
		return false
	}
	if f.Unenriched && ev.EnhancedLocation != nil {
		return false
	}
	if f.Text != nil && !textMatches(ev, *f.Text) {
		return false
	}
	if f.Near != nil && distanceMeters(ev.Location, f.Near.Center) > f.Near.MaxMeters {
		return false
	}
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if ev.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func textMatches(ev domain.Event, m TextMatch) bool {
	var value string
	switch m.Field {
	case FieldCity:
		value = ev.City
	case FieldCountry:
		value = ev.Country
	case FieldVenue:
		value = ev.Venue
	default:
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(m.Pattern))
}

func distanceMeters(a, b domain.Coordinate) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return float64(la.Distance(lb)) * earthRadiusMeters
}

func applyFields(ev *domain.Event, fields Fields) {
	for key, value := range fields {
		switch key {
		case "title":
			ev.Title, _ = value.(string)
		case "description":
			ev.Description, _ = value.(string)
		case "category":
			ev.Category, _ = value.(string)
		case "venue":
			ev.Venue, _ = value.(string)
		case "country":
			ev.Country, _ = value.(string)
		case "city":
			ev.City, _ = value.(string)
		case "location":
			if coord, ok := value.(domain.Coordinate); ok {
				ev.Location = coord
			}
		case "start_time":
			if t, ok := value.(time.Time); ok {
				ev.StartTime = t
			}
		case "updated_at":
			if t, ok := value.(time.Time); ok {
				u := t
				ev.UpdatedAt = &u
			}
		case "enhanced_location":
			if loc, ok := value.(domain.EnhancedLocation); ok {
				l := loc
				ev.EnhancedLocation = &l
			}
		case "enriched_at":
			if t, ok := value.(time.Time); ok {
				e := t
				ev.EnrichedAt = &e
			}
		}
	}
}

var _ EventStore = (*MemoryStore)(nil)
