package domain

import "time"

// Place is the free-text location a user supplies when creating an event.
// It is not validated against any authority beyond the catalog's city list
// at input time.
type Place struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Venue   string `json:"venue"`
}

// Query returns the human-readable string sent to the forward geocoder,
// "venue, city, country".
func (p Place) Query() string {
	return p.Venue + ", " + p.City + ", " + p.Country
}

// Address is a structured postal address as returned by a reverse geocoding
// provider. Any field may be empty.
type Address struct {
	DisplayName string
	Road        string
	HouseNumber string
	Suburb      string
	City        string
	County      string
	State       string
	Country     string
	Postcode    string
}

// EnhancedLocation is the full postal address attached to an event once the
// enrichment sweep reverse-geocodes its coordinate. Set at most once.
type EnhancedLocation struct {
	FormattedAddress string `json:"formatted_address"`
	Street           string `json:"street,omitempty"`
	HouseNumber      string `json:"house_number,omitempty"`
	Suburb           string `json:"suburb,omitempty"`
	City             string `json:"city"`
	County           string `json:"county,omitempty"`
	State            string `json:"state,omitempty"`
	Country          string `json:"country"`
	Postcode         string `json:"postcode,omitempty"`
}

// Event is a user-registered event at a resolved location.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"` // stored lower-cased
	Country     string     `json:"country"`
	City        string     `json:"city"`
	Venue       string     `json:"venue"`
	Location    Coordinate `json:"location"`
	StartTime   time.Time  `json:"start_time"`
	CreatorID   string     `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	// Enrichment fields, absent until the background sweep succeeds.
	EnhancedLocation *EnhancedLocation `json:"enhanced_location,omitempty"`
	EnrichedAt       *time.Time        `json:"enriched_at,omitempty"`

	// Status is derived at read time and never persisted.
	Status EventStatus `json:"status,omitempty"`
}

// Enriched reports whether the event already carries a full address.
func (e *Event) Enriched() bool {
	return e.EnhancedLocation != nil
}

// Place returns the free-text place the event was registered under.
func (e *Event) Place() Place {
	return Place{Country: e.Country, City: e.City, Venue: e.Venue}
}
