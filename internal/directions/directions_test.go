package directions

import (
	"errors"
	"math"
	"testing"

	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

var origin = spatial.Point{Lat: 21.1865, Lon: 81.3509}

func TestEstimate850Meters(t *testing.T) {
	dest := spatial.DestinationPoint(origin, 60, 850)
	got, ok := NewEstimator(5).Estimate(origin, dest)
	if !ok {
		t.Fatalf("Estimate returned no result")
	}
	if got.DistanceLabel != "850m" {
		t.Fatalf("DistanceLabel = %q, want 850m", got.DistanceLabel)
	}
	if got.DurationLabel != "10 min walk" {
		t.Fatalf("DurationLabel = %q, want \"10 min walk\"", got.DurationLabel)
	}
}

func TestEstimateKilometers(t *testing.T) {
	dest := spatial.DestinationPoint(origin, 180, 1234)
	got, ok := NewEstimator(0).Estimate(origin, dest)
	if !ok {
		t.Fatalf("Estimate returned no result")
	}
	if got.DistanceLabel != "1.23km" {
		t.Fatalf("DistanceLabel = %q, want 1.23km", got.DistanceLabel)
	}
	// 1.234 km at 5 km/h = 14.8 min
	if got.Minutes != 15 || got.DurationLabel != "15 min walk" {
		t.Fatalf("duration = %d / %q, want 15", got.Minutes, got.DurationLabel)
	}
}

func TestEstimateCustomSpeed(t *testing.T) {
	dest := spatial.DestinationPoint(origin, 0, 1000)
	got, _ := NewEstimator(3).Estimate(origin, dest)
	if got.Minutes != 20 {
		t.Fatalf("Minutes at 3 km/h = %d, want 20", got.Minutes)
	}
}

func TestEstimateMalformed(t *testing.T) {
	cases := []spatial.Point{
		{Lat: math.NaN(), Lon: 81},
		{Lat: 100, Lon: 81},
		{Lat: 21, Lon: 200},
	}
	for _, p := range cases {
		if _, ok := NewEstimator(5).Estimate(origin, p); ok {
			t.Fatalf("Estimate(%v) reported a result", p)
		}
		if _, ok := NewEstimator(5).Estimate(p, origin); ok {
			t.Fatalf("Estimate(%v) as origin reported a result", p)
		}
	}
}

func TestFormatDistance(t *testing.T) {
	cases := map[float64]string{
		0:      "0m",
		123.4:  "123m",
		999.4:  "999m",
		999.6:  "1.00km",
		1000:   "1.00km",
		2567.8: "2.57km",
	}
	for in, want := range cases {
		if got := FormatDistance(in); got != want {
			t.Fatalf("FormatDistance(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSynthesizeRoute(t *testing.T) {
	dest := spatial.Point{Lat: 21.1965, Lon: 81.3609}
	route := SynthesizeRoute(origin, dest, 0)
	if len(route) != DefaultRouteSteps+1 {
		t.Fatalf("len(route) = %d, want %d", len(route), DefaultRouteSteps+1)
	}
	if route[0] != origin || route[len(route)-1] != dest {
		t.Fatalf("route endpoints = %v..%v, want %v..%v", route[0], route[len(route)-1], origin, dest)
	}
	mid := route[5]
	if math.Abs(mid.Lat-21.1915) > 1e-9 || math.Abs(mid.Lon-81.3559) > 1e-9 {
		t.Fatalf("midpoint = %v", mid)
	}

	if got := SynthesizeRoute(origin, dest, 4); len(got) != 5 {
		t.Fatalf("len(route, steps=4) = %d, want 5", len(got))
	}
	if got := SynthesizeRoute(origin, spatial.Point{Lat: math.NaN()}, 4); got != nil {
		t.Fatalf("SynthesizeRoute with NaN = %v, want nil", got)
	}
}

func TestSynthesizeRouteLargeStepsKeepsEveryPoint(t *testing.T) {
	dest := spatial.Point{Lat: 21.1965, Lon: 81.3609}
	route := SynthesizeRoute(origin, dest, 1000)
	if len(route) != 1001 {
		t.Fatalf("len(route, steps=1000) = %d, want 1001", len(route))
	}
	if route[0] != origin || route[1000] != dest {
		t.Fatalf("route endpoints = %v..%v, want %v..%v", route[0], route[1000], origin, dest)
	}
}

func TestValidateSteps(t *testing.T) {
	for _, steps := range []int{-1, 0, 1, MaxRouteSteps} {
		if err := ValidateSteps(steps); err != nil {
			t.Fatalf("ValidateSteps(%d) = %v, want nil", steps, err)
		}
	}
	if err := ValidateSteps(MaxRouteSteps + 1); !errors.Is(err, ErrTooManySteps) {
		t.Fatalf("ValidateSteps(%d) = %v, want ErrTooManySteps", MaxRouteSteps+1, err)
	}
}
