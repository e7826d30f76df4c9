package spatial

import (
	"errors"
	"math"
	"testing"
)

var adminBlock = []Point{
	{Lat: 21.1860, Lon: 81.3504},
	{Lat: 21.1860, Lon: 81.3514},
	{Lat: 21.1870, Lon: 81.3514},
	{Lat: 21.1870, Lon: 81.3504},
}

func TestDistanceSymmetryAndIdentity(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 21.1865, Lon: 81.3509}, {Lat: 21.1900, Lon: 81.3600}},
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}},
		{{Lat: -33.8688, Lon: 151.2093}, {Lat: 51.5074, Lon: -0.1278}},
		{{Lat: 89.9, Lon: 10}, {Lat: -89.9, Lon: -170}},
	}
	for _, pair := range pairs {
		ab := DistanceMeters(pair[0], pair[1])
		ba := DistanceMeters(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-6 {
			t.Fatalf("DistanceMeters(%v,%v) = %v, reverse = %v", pair[0], pair[1], ab, ba)
		}
		if d := DistanceMeters(pair[0], pair[0]); d != 0 {
			t.Fatalf("DistanceMeters(a,a) = %v, want 0", d)
		}
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// one degree of longitude on the equator
	got := DistanceMeters(Point{Lat: 0, Lon: 0}, Point{Lat: 0, Lon: 1})
	want := EarthRadiusMeters * math.Pi / 180
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("DistanceMeters = %v, want %v", got, want)
	}
}

func TestDistanceNaNIsVisible(t *testing.T) {
	d := DistanceMeters(Point{Lat: math.NaN(), Lon: 0}, Point{Lat: 0, Lon: 0})
	if !math.IsNaN(d) {
		t.Fatalf("DistanceMeters with NaN input = %v, want NaN", d)
	}
}

func TestDestinationPointRoundTrip(t *testing.T) {
	start := Point{Lat: 21.1865, Lon: 81.3509}
	for _, dist := range []float64{10, 40, 850, 1234} {
		dest := DestinationPoint(start, 45, dist)
		if got := DistanceMeters(start, dest); math.Abs(got-dist) > 0.01 {
			t.Fatalf("distance to destination = %v, want %v", got, dist)
		}
	}
}

func TestWithinBoundsInclusive(t *testing.T) {
	b := Bounds{North: 2, South: 1, East: 4, West: 3}
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{Lat: 1.5, Lon: 3.5}, true},
		{Point{Lat: 2, Lon: 3.5}, true},
		{Point{Lat: 1, Lon: 3.5}, true},
		{Point{Lat: 1.5, Lon: 4}, true},
		{Point{Lat: 1.5, Lon: 3}, true},
		{Point{Lat: 2, Lon: 4}, true},
		{Point{Lat: 2.0001, Lon: 3.5}, false},
		{Point{Lat: 1.5, Lon: 2.9999}, false},
	}
	for _, tc := range cases {
		got, err := WithinBounds(tc.p, b)
		if err != nil {
			t.Fatalf("WithinBounds(%v): %v", tc.p, err)
		}
		if got != tc.want {
			t.Fatalf("WithinBounds(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestPointInPolygonCentroidAndFarAway(t *testing.T) {
	inside, err := PointInPolygon(Centroid(adminBlock), adminBlock)
	if err != nil {
		t.Fatalf("PointInPolygon: %v", err)
	}
	if !inside {
		t.Fatalf("centroid reported outside polygon")
	}

	far := Point{Lat: 22.5, Lon: 80.0}
	inside, err = PointInPolygon(far, adminBlock)
	if err != nil {
		t.Fatalf("PointInPolygon: %v", err)
	}
	if inside {
		t.Fatalf("far point reported inside polygon")
	}
}

func TestPointInPolygonExplicitClosureMatchesImplicit(t *testing.T) {
	closed := append(append([]Point{}, adminBlock...), adminBlock[0])
	probes := []Point{
		{Lat: 21.1865, Lon: 81.3509},
		{Lat: 21.1861, Lon: 81.3513},
		{Lat: 21.1875, Lon: 81.3509},
		{Lat: 21.1865, Lon: 81.3520},
	}
	for _, p := range probes {
		a, _ := PointInPolygon(p, adminBlock)
		b, _ := PointInPolygon(p, closed)
		if a != b {
			t.Fatalf("PointInPolygon(%v) implicit=%v explicit=%v", p, a, b)
		}
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// U shape opening north
	ring := []Point{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 3}, {Lat: 3, Lon: 3}, {Lat: 3, Lon: 2},
		{Lat: 1, Lon: 2}, {Lat: 1, Lon: 1}, {Lat: 3, Lon: 1}, {Lat: 3, Lon: 0},
	}
	if in, _ := PointInPolygon(Point{Lat: 2, Lon: 1.5}, ring); in {
		t.Fatalf("point in the notch reported inside")
	}
	if in, _ := PointInPolygon(Point{Lat: 2, Lon: 0.5}, ring); !in {
		t.Fatalf("point in the left arm reported outside")
	}
}

func TestPointInPolygonDegenerateRing(t *testing.T) {
	in, err := PointInPolygon(Point{Lat: 0, Lon: 0}, []Point{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}})
	if err != nil || in {
		t.Fatalf("PointInPolygon with 2 vertices = %v, %v; want false, nil", in, err)
	}
}

func TestGeometryRejectsInvalidPoint(t *testing.T) {
	bad := []Point{
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.Inf(1)},
		{Lat: 91, Lon: 0},
		{Lat: 0, Lon: -181},
	}
	for _, p := range bad {
		if _, err := PointInPolygon(p, adminBlock); !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("PointInPolygon(%v) err = %v, want ErrInvalidCoordinate", p, err)
		}
		if _, err := PointInCircle(p, Point{}, 10); !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("PointInCircle(%v) err = %v, want ErrInvalidCoordinate", p, err)
		}
		if _, err := WithinBounds(p, Bounds{North: 90, South: -90, East: 180, West: -180}); !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("WithinBounds(%v) err = %v, want ErrInvalidCoordinate", p, err)
		}
	}
}

func TestPointInCircleBoundary(t *testing.T) {
	center := Point{Lat: 21.1865, Lon: 81.3509}
	edge := DestinationPoint(center, 90, 100)
	radius := DistanceMeters(center, edge)

	in, err := PointInCircle(edge, center, radius)
	if err != nil {
		t.Fatalf("PointInCircle: %v", err)
	}
	if !in {
		t.Fatalf("point at exactly radius reported outside")
	}

	outside := DestinationPoint(center, 90, 100.01)
	in, _ = PointInCircle(outside, center, radius)
	if in {
		t.Fatalf("point at radius+epsilon reported inside")
	}
}

func TestCircleBoundsContainsCircle(t *testing.T) {
	center := Point{Lat: 21.1865, Lon: 81.3509}
	b := CircleBounds(center, 250)
	for bearing := 0.0; bearing < 360; bearing += 15 {
		p := DestinationPoint(center, bearing, 250)
		if in, _ := WithinBounds(p, b); !in {
			t.Fatalf("circle edge at bearing %v outside CircleBounds", bearing)
		}
	}
}

func TestGeohashKnownValue(t *testing.T) {
	got := EncodeGeohash(Point{Lat: 57.64911, Lon: 10.40744}, 11)
	if got != "u4pruydqqvj" {
		t.Fatalf("EncodeGeohash = %q, want u4pruydqqvj", got)
	}
}

func TestGeohashCenterInsideCell(t *testing.T) {
	p := Point{Lat: 21.1865, Lon: 81.3509}
	for precision := 1; precision <= 9; precision++ {
		hash := EncodeGeohash(p, precision)
		b, err := GeohashBounds(hash)
		if err != nil {
			t.Fatalf("GeohashBounds(%q): %v", hash, err)
		}
		if in, _ := WithinBounds(p, b); !in {
			t.Fatalf("point outside its own cell %q", hash)
		}
		center, err := DecodeGeohash(hash)
		if err != nil {
			t.Fatalf("DecodeGeohash(%q): %v", hash, err)
		}
		if EncodeGeohash(center, precision) != hash {
			t.Fatalf("center of %q encodes to a different cell", hash)
		}
	}
}

func TestGeohashRejectsInvalid(t *testing.T) {
	if _, err := DecodeGeohash(""); err == nil {
		t.Fatalf("DecodeGeohash(\"\") returned no error")
	}
	if _, err := DecodeGeohash("ab!"); err == nil {
		t.Fatalf("DecodeGeohash with invalid char returned no error")
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	a := Point{Lat: 1, Lon: 2}
	b := Point{Lat: 3, Lon: 6}
	if got := Interpolate(a, b, 0); got != a {
		t.Fatalf("Interpolate(t=0) = %v, want %v", got, a)
	}
	if got := Interpolate(a, b, 1); got != b {
		t.Fatalf("Interpolate(t=1) = %v, want %v", got, b)
	}
	if got := Interpolate(a, b, 0.5); got != (Point{Lat: 2, Lon: 4}) {
		t.Fatalf("Interpolate(t=0.5) = %v", got)
	}
}
