package geofence

import (
	"fmt"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// Policy selects which zone wins when a point lies in several
type Policy int

const (
	// FirstMatch returns the first containing zone in catalog order
	FirstMatch Policy = iota
	// HighestSeverity returns the most severe containing zone; catalog
	// order breaks ties between equal severities
	HighestSeverity
)

// ParsePolicy maps a config string to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "first", "first-match":
		return FirstMatch, nil
	case "severity", "highest-severity":
		return HighestSeverity, nil
	}
	return FirstMatch, fmt.Errorf("unknown geofence policy %q", s)
}

func (p Policy) String() string {
	if p == HighestSeverity {
		return "highest-severity"
	}
	return "first-match"
}

// Evaluator decides which zone, if any, contains a point. It holds no
// state besides its policy and is safe for concurrent use.
type Evaluator struct {
	Policy Policy
}

// Evaluate returns the breach for point against zones, or nil when no zone
// contains it. An invalid point yields spatial.ErrInvalidCoordinate. Zones
// failing Validate are skipped.
func (e Evaluator) Evaluate(point spatial.Point, zones []models.Zone) (*models.Breach, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}

	var best *models.Zone
	for i := range zones {
		z := &zones[i]
		in, err := Contains(*z, point)
		if err != nil || !in {
			continue
		}
		if e.Policy == FirstMatch {
			return models.NewBreach(*z), nil
		}
		if best == nil || z.Severity.Rank() > best.Severity.Rank() {
			best = z
		}
	}

	if best == nil {
		return nil, nil
	}
	return models.NewBreach(*best), nil
}

// Matches returns every valid zone containing point, in catalog order
func (e Evaluator) Matches(point spatial.Point, zones []models.Zone) ([]models.Zone, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}
	var out []models.Zone
	for _, z := range zones {
		if in, err := Contains(z, point); err == nil && in {
			out = append(out, z)
		}
	}
	return out, nil
}

// Contains tests one zone. The zone's bounding box is checked first.
func Contains(z models.Zone, point spatial.Point) (bool, error) {
	if err := z.Validate(); err != nil {
		return false, err
	}

	inBox, err := spatial.WithinBounds(point, z.Bounds())
	if err != nil || !inBox {
		return false, err
	}

	switch z.Shape {
	case models.ShapeCircle:
		return spatial.PointInCircle(point, *z.Center, z.RadiusMeters)
	default:
		return spatial.PointInPolygon(point, z.Polygon)
	}
}
