package spatial

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned when a coordinate is NaN, infinite or
// outside the WGS84 degree ranges.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point represents a WGS84 coordinate in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point is finite and inside [-90,90] x [-180,180]
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Validate returns ErrInvalidCoordinate (wrapped with the offending values)
// when the point is not Valid.
func (p Point) Validate() error {
	if !p.Valid() {
		return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, p.Lat, p.Lon)
	}
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// Bounds is a rectangular latitude/longitude box
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// WithinBounds checks rectangular containment, inclusive on all four edges.
// Boxes crossing the antimeridian are not supported.
func WithinBounds(p Point, b Bounds) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	return p.Lat <= b.North && p.Lat >= b.South && p.Lon <= b.East && p.Lon >= b.West, nil
}
