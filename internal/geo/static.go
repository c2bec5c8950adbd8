package geo

import "github.com/ihirwe/event-locator/internal/domain"

// countryCodes maps allow-listed country names to their ISO 3166-1 alpha-2
// codes for the per-country-code catalog provider.
var countryCodes = map[string]string{
	"Rwanda":                           "RW",
	"Kenya":                            "KE",
	"Uganda":                           "UG",
	"Tanzania":                         "TZ",
	"Burundi":                          "BI",
	"Democratic Republic of the Congo": "CD",
}

// staticCities is the last-resort city dataset, shipped with the binary so
// the catalog is usable with no network at all.
var staticCities = map[string][]string{
	"Rwanda":                           {"Butare", "Gisenyi", "Gitarama", "Kibuye", "Kigali", "Musanze", "Ruhengeri"},
	"Kenya":                            {"Eldoret", "Kisumu", "Mombasa", "Nairobi", "Nakuru"},
	"Uganda":                           {"Entebbe", "Gulu", "Jinja", "Kampala", "Mbale"},
	"Tanzania":                         {"Arusha", "Dar es Salaam", "Dodoma", "Mwanza", "Zanzibar"},
	"Burundi":                          {"Bujumbura", "Gitega", "Ngozi", "Rumonge"},
	"Democratic Republic of the Congo": {"Bukavu", "Goma", "Kinshasa", "Lubumbashi"},
}

// StaticCitiesFor returns the shipped city list for a country, or nil when
// the country is outside the target region.
func StaticCitiesFor(country string) []string {
	return staticCities[country]
}

// CountryCode returns the ISO code for an allow-listed country name.
func CountryCode(country string) (string, bool) {
	code, ok := countryCodes[country]
	return code, ok
}

// localCities is the curated lookup table of regional city coordinates
// consulted before any remote geocoding call. Keys are normalized
// (lower-cased, trimmed) city names; values are (lon, lat).
var localCities = map[string]domain.Coordinate{
	"kigali":        {Lon: 30.0619, Lat: -1.9441},
	"butare":        {Lon: 29.7394, Lat: -2.5967},
	"gitarama":      {Lon: 29.7567, Lat: -2.0744},
	"ruhengeri":     {Lon: 29.6342, Lat: -1.4998},
	"musanze":       {Lon: 29.6342, Lat: -1.4998},
	"gisenyi":       {Lon: 29.2570, Lat: -1.7021},
	"kibuye":        {Lon: 29.3478, Lat: -2.0603},
	"nairobi":       {Lon: 36.8219, Lat: -1.2921},
	"mombasa":       {Lon: 39.6682, Lat: -4.0435},
	"kisumu":        {Lon: 34.7617, Lat: -0.0917},
	"nakuru":        {Lon: 36.0667, Lat: -0.3031},
	"eldoret":       {Lon: 35.2699, Lat: 0.5143},
	"kampala":       {Lon: 32.5825, Lat: 0.3476},
	"entebbe":       {Lon: 32.4637, Lat: 0.0512},
	"jinja":         {Lon: 33.2026, Lat: 0.4244},
	"mbale":         {Lon: 34.1754, Lat: 1.0784},
	"gulu":          {Lon: 32.2881, Lat: 2.7746},
	"dar es salaam": {Lon: 39.2083, Lat: -6.7924},
	"dodoma":        {Lon: 35.7516, Lat: -6.1630},
	"arusha":        {Lon: 36.6830, Lat: -3.3869},
	"mwanza":        {Lon: 32.8987, Lat: -2.5164},
	"zanzibar":      {Lon: 39.1979, Lat: -6.1659},
	"bujumbura":     {Lon: 29.3599, Lat: -3.3614},
	"gitega":        {Lon: 29.9246, Lat: -3.4271},
	"ngozi":         {Lon: 29.8306, Lat: -2.9075},
	"rumonge":       {Lon: 29.4386, Lat: -3.9736},
	"goma":          {Lon: 29.2218, Lat: -1.6585},
	"bukavu":        {Lon: 28.8608, Lat: -2.4910},
	"kinshasa":      {Lon: 15.2663, Lat: -4.4419},
	"lubumbashi":    {Lon: 27.4794, Lat: -11.6609},
}
