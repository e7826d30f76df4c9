package models

import (
	"fmt"

	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// Severity ranks how critical a restricted zone is
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities; unknown values rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known severities
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// ZoneShape selects which geometry fields of a Zone are populated
type ZoneShape string

const (
	ShapePolygon ZoneShape = "polygon"
	ShapeCircle  ZoneShape = "circle"
)

// Zone is a restricted or critical campus area. Zones are read-only once
// loaded; a slice handed to the evaluator is treated as a snapshot.
type Zone struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Severity    Severity  `json:"severity" db:"severity"`
	Description string    `json:"description,omitempty" db:"description"`
	Shape       ZoneShape `json:"shape" db:"shape"`

	// Polygon ring, implicitly closed (shape == polygon)
	Polygon []spatial.Point `json:"polygon,omitempty" db:"ring_json"`

	// Circle geometry (shape == circle)
	Center       *spatial.Point `json:"center,omitempty" db:"-"`
	RadiusMeters float64        `json:"radiusMeters,omitempty" db:"radius_meters"`
}

// Validate checks the shape invariant: exactly one of polygon ring or
// center+radius is populated, matching Shape.
func (z Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone has empty id")
	}
	if !z.Severity.Valid() {
		return fmt.Errorf("zone %s: unknown severity %q", z.ID, z.Severity)
	}

	switch z.Shape {
	case ShapePolygon:
		if len(z.Polygon) < 3 {
			return fmt.Errorf("zone %s: polygon needs at least 3 points, got %d", z.ID, len(z.Polygon))
		}
		if z.Center != nil || z.RadiusMeters != 0 {
			return fmt.Errorf("zone %s: polygon zone must not carry circle fields", z.ID)
		}
		for i, p := range z.Polygon {
			if err := p.Validate(); err != nil {
				return fmt.Errorf("zone %s: vertex %d: %w", z.ID, i, err)
			}
		}
	case ShapeCircle:
		if z.Center == nil {
			return fmt.Errorf("zone %s: circle zone has no center", z.ID)
		}
		if err := z.Center.Validate(); err != nil {
			return fmt.Errorf("zone %s: center: %w", z.ID, err)
		}
		if !(z.RadiusMeters > 0) {
			return fmt.Errorf("zone %s: circle radius must be > 0, got %v", z.ID, z.RadiusMeters)
		}
		if len(z.Polygon) != 0 {
			return fmt.Errorf("zone %s: circle zone must not carry a polygon", z.ID)
		}
	default:
		return fmt.Errorf("zone %s: unknown shape %q", z.ID, z.Shape)
	}

	return nil
}

// Bounds returns the bounding box of the zone's geometry
func (z Zone) Bounds() spatial.Bounds {
	if z.Shape == ShapeCircle && z.Center != nil {
		return spatial.CircleBounds(*z.Center, z.RadiusMeters)
	}
	return spatial.BoundingBox(z.Polygon)
}
