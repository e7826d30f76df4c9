// Package emergency picks the nearest emergency facility for a position.
package emergency

import (
	"math"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// TieToleranceMeters is how close two distances must be to count as a tie
const TieToleranceMeters = 1e-6

// ResolveNearest returns the facility closest to point. Ties within
// TieToleranceMeters go to the lower Priority, then to the facility that
// appears first in the slice. Returns false for an invalid point or an
// empty candidate set.
func ResolveNearest(point spatial.Point, facilities []models.Facility) (*models.ResolvedFacility, bool) {
	return resolve(point, facilities, func(models.Facility) bool { return true })
}

// ResolveNearestOfType is ResolveNearest restricted to one facility type
func ResolveNearestOfType(point spatial.Point, facilities []models.Facility, ft models.FacilityType) (*models.ResolvedFacility, bool) {
	return resolve(point, facilities, func(f models.Facility) bool { return f.Type == ft })
}

func resolve(point spatial.Point, facilities []models.Facility, keep func(models.Facility) bool) (*models.ResolvedFacility, bool) {
	if !point.Valid() {
		return nil, false
	}

	bestIdx := -1
	bestDist := math.Inf(1)
	for i, f := range facilities {
		if !keep(f) || !f.Location.Valid() {
			continue
		}
		d := spatial.DistanceMeters(point, f.Location)
		switch {
		case bestIdx == -1 || d < bestDist-TieToleranceMeters:
			bestIdx, bestDist = i, d
		case math.Abs(d-bestDist) <= TieToleranceMeters && f.Priority < facilities[bestIdx].Priority:
			bestIdx, bestDist = i, d
		}
	}

	if bestIdx == -1 {
		return nil, false
	}
	return &models.ResolvedFacility{Facility: facilities[bestIdx], DistanceMeters: bestDist}, true
}
