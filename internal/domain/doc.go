// Package domain models events registered at named places and the
// geographic data attached to them.
//
// # Coordinates
//
// Coordinates are WGS-84 and ordered (longitude, latitude) to match the
// GeoJSON convention of the original events collection. Longitude must fall
// in [-180, 180] and latitude in [-90, 90]; anything outside those bounds is
// unusable and callers substitute the configured fallback anchor instead of
// persisting it.
//
// # Enrichment lifecycle
//
// An event is created with only a coordinate. The background sweep later
// attaches an EnhancedLocation (full postal address) by reverse geocoding
// the stored coordinate. Enrichment happens at most once per event: a record
// carrying an EnhancedLocation is skipped by every subsequent sweep, even if
// the provider would now return better data. There is no invalidation path.
//
// # Status
//
// EventStatus is derived, never stored. An event is overdue once its start
// time has passed, due within the 24-hour window before it starts (both
// window bounds inclusive), and pending before that. See [ClassifyStatus].
package domain
