package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jengzang/campusguard-backend-go/internal/directions"
	"github.com/jengzang/campusguard-backend-go/internal/emergency"
	"github.com/jengzang/campusguard-backend-go/internal/geofence"
	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/observability"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// EmergencyService finds the nearest facility and estimates the walk there
type EmergencyService struct {
	catalog   geofence.Catalog
	estimator directions.Estimator
}

// NewEmergencyService creates a new emergency service
func NewEmergencyService(catalog geofence.Catalog, estimator directions.Estimator) *EmergencyService {
	return &EmergencyService{catalog: catalog, estimator: estimator}
}

// Nearest resolves the closest facility to p, optionally of one type, with
// directions and an approximate route of steps segments.
func (s *EmergencyService) Nearest(ctx context.Context, p spatial.Point, ft models.FacilityType, steps int) (*models.NearestFacilityResponse, error) {
	ctx, span := observability.Tracer().Start(ctx, "emergency.nearest")
	defer span.End()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := directions.ValidateSteps(steps); err != nil {
		return nil, err
	}

	facilities, err := s.catalog.EmergencyFacilities(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: facilities: %v", ErrUnavailable, err)
	}

	var resolved *models.ResolvedFacility
	var ok bool
	if ft == "" {
		resolved, ok = emergency.ResolveNearest(p, facilities)
	} else {
		resolved, ok = emergency.ResolveNearestOfType(p, facilities, ft)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no facility of type %q", ErrNotFound, ft)
	}
	span.SetAttributes(
		attribute.String("facility.id", resolved.Facility.ID),
		attribute.Float64("distance_m", resolved.DistanceMeters),
	)

	est, _ := s.estimator.Estimate(p, resolved.Facility.Location)
	return &models.NearestFacilityResponse{
		Resolved:   *resolved,
		Directions: est,
		Route:      directions.SynthesizeRoute(p, resolved.Facility.Location, steps),
	}, nil
}

// Directions estimates the walk between two arbitrary points
func (s *EmergencyService) Directions(from, to spatial.Point, steps int) (models.Directions, []spatial.Point, error) {
	if err := from.Validate(); err != nil {
		return models.Directions{}, nil, err
	}
	if err := to.Validate(); err != nil {
		return models.Directions{}, nil, err
	}
	if err := directions.ValidateSteps(steps); err != nil {
		return models.Directions{}, nil, err
	}
	est, ok := s.estimator.Estimate(from, to)
	if !ok {
		return models.Directions{}, nil, fmt.Errorf("%w: %v -> %v", spatial.ErrInvalidCoordinate, from, to)
	}
	return est, directions.SynthesizeRoute(from, to, steps), nil
}
