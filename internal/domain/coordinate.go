package domain

// Coordinate is a WGS-84 longitude/latitude pair in degrees.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the coordinate lies within the WGS-84 bounds.
// The zero value (0, 0) is technically a valid point in the Gulf of Guinea,
// but no event in the target region sits there, so callers may additionally
// treat it as "unset".
func (c Coordinate) Valid() bool {
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// IsZero reports whether the coordinate is the unset zero value.
func (c Coordinate) IsZero() bool {
	return c.Lon == 0 && c.Lat == 0
}
