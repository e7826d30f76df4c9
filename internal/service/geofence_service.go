package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jengzang/campusguard-backend-go/internal/geofence"
	"github.com/jengzang/campusguard-backend-go/internal/logging"
	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/observability"
	"github.com/jengzang/campusguard-backend-go/internal/repository"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// ReloadFunc re-seeds the catalog and returns zone and facility counts
type ReloadFunc func(ctx context.Context) (zones, facilities int, err error)

// GeofenceService answers zone lookups and point evaluations
type GeofenceService struct {
	catalog   geofence.Catalog
	evaluator geofence.Evaluator
	reload    ReloadFunc
	log       *slog.Logger
}

// NewGeofenceService creates a new geofence service. reload may be nil.
func NewGeofenceService(catalog geofence.Catalog, policy geofence.Policy, reload ReloadFunc, log *slog.Logger) *GeofenceService {
	if log == nil {
		log = logging.Discard()
	}
	return &GeofenceService{
		catalog:   catalog,
		evaluator: geofence.Evaluator{Policy: policy},
		reload:    reload,
		log:       log,
	}
}

// Zones returns the restricted zones in catalog order
func (s *GeofenceService) Zones(ctx context.Context) ([]models.Zone, error) {
	zones, err := s.catalog.RestrictedZones(ctx)
	if err != nil {
		s.log.Warn("zone_catalog_unavailable", "err", err)
		return nil, fmt.Errorf("%w: zones: %v", ErrUnavailable, err)
	}
	return zones, nil
}

// Facilities returns the emergency facilities in catalog order
func (s *GeofenceService) Facilities(ctx context.Context) ([]models.Facility, error) {
	facilities, err := s.catalog.EmergencyFacilities(ctx)
	if err != nil {
		s.log.Warn("facility_catalog_unavailable", "err", err)
		return nil, fmt.Errorf("%w: facilities: %v", ErrUnavailable, err)
	}
	return facilities, nil
}

// Evaluate returns the breach for p, or nil when p is outside every zone
func (s *GeofenceService) Evaluate(ctx context.Context, p spatial.Point) (*models.Breach, error) {
	ctx, span := observability.Tracer().Start(ctx, "geofence.evaluate")
	defer span.End()

	if err := p.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	zones, err := s.Zones(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog unavailable")
		return nil, err
	}
	span.SetAttributes(attribute.Int("zones", len(zones)))

	breach, err := s.evaluator.Evaluate(p, zones)
	if err != nil {
		return nil, err
	}
	if breach != nil {
		span.SetAttributes(attribute.String("zone.id", breach.ZoneID))
	}
	return breach, nil
}

// ExportGeoJSON renders the current catalog as a FeatureCollection
func (s *GeofenceService) ExportGeoJSON(ctx context.Context) (*geojson.FeatureCollection, error) {
	zones, err := s.Zones(ctx)
	if err != nil {
		return nil, err
	}
	facilities, err := s.Facilities(ctx)
	if err != nil {
		return nil, err
	}
	return repository.CatalogToGeoJSON(zones, facilities), nil
}

// Reload re-seeds the catalog and drops any cached snapshot
func (s *GeofenceService) Reload(ctx context.Context) (int, int, error) {
	if s.reload == nil {
		return 0, 0, fmt.Errorf("%w: no catalog source configured", ErrNotFound)
	}
	nz, nf, err := s.reload(ctx)
	if cached, ok := s.catalog.(*geofence.CachedCatalog); ok {
		cached.Invalidate()
	}
	if err != nil {
		return 0, 0, err
	}
	s.log.Info("catalog_reloaded", "zones", nz, "facilities", nf)
	return nz, nf, nil
}
