// Package directions produces straight-line distance and walking-time
// estimates. It does not route along paths; SynthesizeRoute only draws a
// straight line for display.
package directions

import (
	"errors"
	"fmt"
	"math"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

const (
	// DefaultWalkingSpeedKmh is used when Estimator.WalkingSpeedKmh is unset
	DefaultWalkingSpeedKmh = 5.0
	// DefaultRouteSteps is the number of segments SynthesizeRoute draws
	DefaultRouteSteps = 10
	// MaxRouteSteps is the largest route the API will synthesize
	MaxRouteSteps = 500
)

// ErrTooManySteps is returned by ValidateSteps for steps above MaxRouteSteps
var ErrTooManySteps = errors.New("route steps out of range")

// ValidateSteps rejects route sizes callers may not request
func ValidateSteps(steps int) error {
	if steps > MaxRouteSteps {
		return fmt.Errorf("%w: %d > %d", ErrTooManySteps, steps, MaxRouteSteps)
	}
	return nil
}

// Estimator turns coordinate pairs into display strings
type Estimator struct {
	WalkingSpeedKmh float64
}

// NewEstimator returns an Estimator; non-positive speeds fall back to the default
func NewEstimator(speedKmh float64) Estimator {
	if !(speedKmh > 0) || math.IsInf(speedKmh, 0) {
		speedKmh = DefaultWalkingSpeedKmh
	}
	return Estimator{WalkingSpeedKmh: speedKmh}
}

// Estimate returns the distance and walking time between origin and
// destination. It reports false when either coordinate is malformed; callers
// show a "calculating" state in that case.
func (e Estimator) Estimate(origin, destination spatial.Point) (models.Directions, bool) {
	if !origin.Valid() || !destination.Valid() {
		return models.Directions{}, false
	}

	meters := spatial.DistanceMeters(origin, destination)
	if math.IsNaN(meters) {
		return models.Directions{}, false
	}

	speed := e.WalkingSpeedKmh
	if !(speed > 0) {
		speed = DefaultWalkingSpeedKmh
	}
	minutes := int(math.Round(meters / 1000 / speed * 60))

	return models.Directions{
		DistanceMeters: meters,
		DistanceLabel:  FormatDistance(meters),
		Minutes:        minutes,
		DurationLabel:  fmt.Sprintf("%d min walk", minutes),
	}, true
}

// FormatDistance renders meters below 1 km as "123m" and the rest as "1.23km"
func FormatDistance(meters float64) string {
	if meters < 1000 {
		m := int(math.Round(meters))
		if m >= 1000 {
			// 999.5m and up would print as "1000m"
			return fmt.Sprintf("%.2fkm", meters/1000)
		}
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%.2fkm", meters/1000)
}

// SynthesizeRoute linearly interpolates steps+1 points from origin to
// destination, both ends included. This is an approximation for drawing a
// line on a map, not a walkable path. steps <= 0 uses DefaultRouteSteps.
// Malformed coordinates yield nil.
func SynthesizeRoute(origin, destination spatial.Point, steps int) []spatial.Point {
	if !origin.Valid() || !destination.Valid() {
		return nil
	}
	if steps <= 0 {
		steps = DefaultRouteSteps
	}

	route := make([]spatial.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		route = append(route, spatial.Interpolate(origin, destination, float64(i)/float64(steps)))
	}
	// land exactly on the destination regardless of float error
	route[steps] = destination
	return route
}
