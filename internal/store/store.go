// Package store persists event records and builds the geospatial search
// filters over them. Two implementations exist: Postgres (earthdistance
// proximity) and an in-memory store used by tests and demo mode.
package store

import (
	"context"
	"errors"

	"github.com/ihirwe/event-locator/internal/domain"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

// TextField selects which free-text column a search matches against.
type TextField string

const (
	FieldCity    TextField = "city"
	FieldCountry TextField = "country"
	FieldVenue   TextField = "venue"
)

// Valid reports whether the field is one of the searchable columns.
func (f TextField) Valid() bool {
	return f == FieldCity || f == FieldCountry || f == FieldVenue
}

// TextMatch is a case-insensitive substring match on a text field.
type TextMatch struct {
	Field   TextField
	Pattern string
}

// Proximity selects records within MaxMeters of Center.
type Proximity struct {
	Center    domain.Coordinate
	MaxMeters float64
}

// Filter is the conjunctive query descriptor passed to FindMany. The zero
// value matches everything.
type Filter struct {
	CreatorID  string
	Unenriched bool // records lacking an EnhancedLocation
	Text       *TextMatch
	Near       *Proximity
	Categories []string // already lower-cased
}

// Sort orders FindMany results by a single column.
type Sort struct {
	Field string
	Desc  bool
}

// SortByStartTime is the ordering every listing in the system uses.
var SortByStartTime = Sort{Field: "start_time"}

// Fields is the set of column updates applied by UpdateOne in a single
// atomic write. Recognized keys: title, description, category, venue,
// country, city, location (domain.Coordinate), start_time, updated_at,
// enhanced_location (domain.EnhancedLocation), enriched_at.
type Fields map[string]any

// EventStore is the persistence collaborator the core calls.
type EventStore interface {
	InsertOne(ctx context.Context, ev domain.Event) error
	FindMany(ctx context.Context, f Filter, sort Sort) ([]domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	UpdateOne(ctx context.Context, id string, fields Fields) error
	DeleteOne(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
