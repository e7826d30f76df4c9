package geofence

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

var adminPoint = spatial.Point{Lat: 21.1865, Lon: 81.3509}

func adminZone() models.Zone {
	return models.Zone{
		ID:       "admin-restricted",
		Name:     "Admin Block",
		Severity: models.SeverityHigh,
		Shape:    models.ShapePolygon,
		Polygon: []spatial.Point{
			{Lat: 21.1860, Lon: 81.3504},
			{Lat: 21.1860, Lon: 81.3514},
			{Lat: 21.1870, Lon: 81.3514},
			{Lat: 21.1870, Lon: 81.3504},
		},
	}
}

func circleZone(id string, sev models.Severity, center spatial.Point, radius float64) models.Zone {
	c := center
	return models.Zone{ID: id, Name: id, Severity: sev, Shape: models.ShapeCircle, Center: &c, RadiusMeters: radius}
}

func TestEvaluateAdminBlock(t *testing.T) {
	breach, err := Evaluator{}.Evaluate(adminPoint, []models.Zone{adminZone()})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if breach == nil {
		t.Fatalf("Evaluate returned no breach for point inside admin block")
	}
	if breach.ZoneID != "admin-restricted" || breach.Severity != models.SeverityHigh {
		t.Fatalf("breach = %+v, want admin-restricted/high", breach)
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	far := spatial.Point{Lat: 21.20, Lon: 81.40}
	breach, err := Evaluator{}.Evaluate(far, []models.Zone{adminZone()})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if breach != nil {
		t.Fatalf("breach = %+v, want nil", breach)
	}

	breach, err = Evaluator{}.Evaluate(far, nil)
	if err != nil || breach != nil {
		t.Fatalf("Evaluate with no zones = %+v, %v; want nil, nil", breach, err)
	}
}

func TestEvaluateOverlapPolicies(t *testing.T) {
	zones := []models.Zone{
		circleZone("lawn", models.SeverityLow, adminPoint, 300),
		adminZone(),
		circleZone("server-room", models.SeverityHigh, adminPoint, 20),
	}

	first, err := Evaluator{Policy: FirstMatch}.Evaluate(adminPoint, zones)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if first.ZoneID != "lawn" {
		t.Fatalf("first-match zone = %s, want lawn", first.ZoneID)
	}

	highest, err := Evaluator{Policy: HighestSeverity}.Evaluate(adminPoint, zones)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// admin-restricted and server-room are both high; catalog order wins
	if highest.ZoneID != "admin-restricted" {
		t.Fatalf("highest-severity zone = %s, want admin-restricted", highest.ZoneID)
	}
}

func TestEvaluateSkipsInvalidZones(t *testing.T) {
	broken := adminZone()
	broken.ID = "broken"
	broken.Polygon = broken.Polygon[:2]

	noRadius := circleZone("no-radius", models.SeverityHigh, adminPoint, 0)

	breach, err := Evaluator{}.Evaluate(adminPoint, []models.Zone{broken, noRadius, adminZone()})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if breach == nil || breach.ZoneID != "admin-restricted" {
		t.Fatalf("breach = %+v, want admin-restricted", breach)
	}
}

func TestEvaluateInvalidPoint(t *testing.T) {
	_, err := Evaluator{}.Evaluate(spatial.Point{Lat: math.NaN(), Lon: 81}, []models.Zone{adminZone()})
	if !errors.Is(err, spatial.ErrInvalidCoordinate) {
		t.Fatalf("err = %v, want ErrInvalidCoordinate", err)
	}
}

func TestMatchesReturnsAllInOrder(t *testing.T) {
	zones := []models.Zone{
		circleZone("outer", models.SeverityLow, adminPoint, 500),
		circleZone("elsewhere", models.SeverityHigh, spatial.Point{Lat: 21.3, Lon: 81.5}, 50),
		adminZone(),
	}
	got, err := Evaluator{}.Matches(adminPoint, zones)
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(got) != 2 || got[0].ID != "outer" || got[1].ID != "admin-restricted" {
		t.Fatalf("Matches = %v, want [outer admin-restricted]", got)
	}
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]Policy{"": FirstMatch, "first": FirstMatch, "highest-severity": HighestSeverity}
	for in, want := range cases {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePolicy("random"); err == nil {
		t.Fatalf("ParsePolicy(random) returned no error")
	}
}

type countingCatalog struct {
	zones []models.Zone
	err   error
	calls int
}

func (c *countingCatalog) RestrictedZones(context.Context) ([]models.Zone, error) {
	c.calls++
	return c.zones, c.err
}

func (c *countingCatalog) EmergencyFacilities(context.Context) ([]models.Facility, error) {
	c.calls++
	return nil, c.err
}

func TestCachedCatalogTTL(t *testing.T) {
	upstream := &countingCatalog{zones: []models.Zone{adminZone()}}
	cached := NewCachedCatalog(upstream, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := cached.RestrictedZones(ctx); err != nil {
			t.Fatalf("RestrictedZones: %v", err)
		}
	}
	if upstream.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", upstream.calls)
	}

	now = now.Add(2 * time.Minute)
	upstream.err = errors.New("db down")
	if _, err := cached.RestrictedZones(ctx); err == nil {
		t.Fatalf("expired snapshot served despite upstream failure")
	}

	upstream.err = nil
	cached.Invalidate()
	zones, err := cached.RestrictedZones(ctx)
	if err != nil || len(zones) != 1 {
		t.Fatalf("RestrictedZones after recovery = %v, %v", zones, err)
	}
}

func TestCachedCatalogEmptyIsCached(t *testing.T) {
	upstream := &countingCatalog{}
	cached := NewCachedCatalog(upstream, time.Minute)
	ctx := context.Background()
	_, _ = cached.EmergencyFacilities(ctx)
	_, _ = cached.EmergencyFacilities(ctx)
	if upstream.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", upstream.calls)
	}
}

func TestStaticCatalogReturnsCopy(t *testing.T) {
	c := &StaticCatalog{Zones: []models.Zone{adminZone()}}
	zones, _ := c.RestrictedZones(context.Background())
	zones[0].ID = "mutated"
	again, _ := c.RestrictedZones(context.Background())
	if again[0].ID != "admin-restricted" {
		t.Fatalf("StaticCatalog leaked its backing slice")
	}
}

func TestCachedCatalogReturnsCopy(t *testing.T) {
	upstream := &countingCatalog{zones: []models.Zone{adminZone()}}
	cached := NewCachedCatalog(upstream, time.Minute)
	ctx := context.Background()

	first, _ := cached.RestrictedZones(ctx)
	first[0].ID = "mutated"
	second, _ := cached.RestrictedZones(ctx)
	if second[0].ID != "admin-restricted" {
		t.Fatalf("cached zone ID = %q, want admin-restricted", second[0].ID)
	}
	second[0].ID = "mutated-again"
	third, _ := cached.RestrictedZones(ctx)
	if third[0].ID != "admin-restricted" {
		t.Fatalf("cached zone ID after hit = %q, want admin-restricted", third[0].ID)
	}
	if upstream.calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", upstream.calls)
	}
}
