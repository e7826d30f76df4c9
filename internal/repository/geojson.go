package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// Feature property keys understood by the GeoJSON importer
const (
	PropID           = "id"
	PropName         = "name"
	PropSeverity     = "severity"
	PropDescription  = "description"
	PropRadius       = "radius"
	PropFacilityType = "facility_type"
	PropPriority     = "priority"
)

// ParseGeoJSON turns a FeatureCollection into a catalog.
//
//   - Polygon features become polygon zones (outer ring only).
//   - Point features with facility_type become facilities.
//   - Point features with a positive radius become circle zones.
//
// Feature order is kept as catalog order. Other features are ignored.
func ParseGeoJSON(data []byte) ([]models.Zone, []models.Facility, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse geojson: %w", err)
	}

	var zones []models.Zone
	var facilities []models.Facility

	for i, f := range fc.Features {
		id := featureID(f, i)
		props := f.Properties

		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) == 0 {
				return nil, nil, fmt.Errorf("feature %s: empty polygon", id)
			}
			zones = append(zones, models.Zone{
				ID:          id,
				Name:        props.MustString(PropName, id),
				Severity:    models.Severity(props.MustString(PropSeverity, string(models.SeverityMedium))),
				Description: props.MustString(PropDescription, ""),
				Shape:       models.ShapePolygon,
				Polygon:     ringToPoints(g[0]),
			})

		case orb.Point:
			loc := spatial.Point{Lat: g.Lat(), Lon: g.Lon()}
			if ft := props.MustString(PropFacilityType, ""); ft != "" {
				facilities = append(facilities, models.Facility{
					ID:       id,
					Name:     props.MustString(PropName, id),
					Location: loc,
					Type:     models.FacilityType(ft),
					Priority: props.MustInt(PropPriority, 0),
				})
				continue
			}
			if r := props.MustFloat64(PropRadius, 0); r > 0 {
				center := loc
				zones = append(zones, models.Zone{
					ID:           id,
					Name:         props.MustString(PropName, id),
					Severity:     models.Severity(props.MustString(PropSeverity, string(models.SeverityMedium))),
					Description:  props.MustString(PropDescription, ""),
					Shape:        models.ShapeCircle,
					Center:       &center,
					RadiusMeters: r,
				})
			}
		}
	}

	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return nil, nil, err
		}
	}

	return zones, facilities, nil
}

// ImportGeoJSONFile replaces the catalog with the contents of a GeoJSON file
func ImportGeoJSONFile(ctx context.Context, repo *CatalogRepository, path string) (int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ImportGeoJSON(ctx, repo, data)
}

// ImportGeoJSON replaces the catalog with the features in data and returns
// the number of zones and facilities loaded.
func ImportGeoJSON(ctx context.Context, repo *CatalogRepository, data []byte) (int, int, error) {
	zones, facilities, err := ParseGeoJSON(data)
	if err != nil {
		return 0, 0, err
	}
	if err := repo.ReplaceCatalog(ctx, zones, facilities); err != nil {
		return 0, 0, err
	}
	return len(zones), len(facilities), nil
}

// CatalogToGeoJSON renders a catalog back to a FeatureCollection in the
// same shape ParseGeoJSON reads.
func CatalogToGeoJSON(zones []models.Zone, facilities []models.Facility) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, z := range zones {
		var f *geojson.Feature
		switch z.Shape {
		case models.ShapeCircle:
			if z.Center == nil {
				continue
			}
			f = geojson.NewFeature(orb.Point{z.Center.Lon, z.Center.Lat})
			f.Properties[PropRadius] = z.RadiusMeters
		default:
			f = geojson.NewFeature(orb.Polygon{pointsToRing(z.Polygon)})
		}
		f.ID = z.ID
		f.Properties[PropID] = z.ID
		f.Properties[PropName] = z.Name
		f.Properties[PropSeverity] = string(z.Severity)
		if z.Description != "" {
			f.Properties[PropDescription] = z.Description
		}
		fc.Append(f)
	}

	for _, fac := range facilities {
		f := geojson.NewFeature(orb.Point{fac.Location.Lon, fac.Location.Lat})
		f.ID = fac.ID
		f.Properties[PropID] = fac.ID
		f.Properties[PropName] = fac.Name
		f.Properties[PropFacilityType] = string(fac.Type)
		f.Properties[PropPriority] = fac.Priority
		fc.Append(f)
	}

	return fc
}

func featureID(f *geojson.Feature, index int) string {
	if id := f.Properties.MustString(PropID, ""); id != "" {
		return id
	}
	switch v := f.ID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("feature-%d", index)
}

// ringToPoints drops the closing vertex; rings are implicitly closed
func ringToPoints(r orb.Ring) []spatial.Point {
	if len(r) > 1 && r[0].Equal(r[len(r)-1]) {
		r = r[:len(r)-1]
	}
	pts := make([]spatial.Point, 0, len(r))
	for _, p := range r {
		pts = append(pts, spatial.Point{Lat: p.Lat(), Lon: p.Lon()})
	}
	return pts
}

// pointsToRing closes the ring as GeoJSON requires
func pointsToRing(pts []spatial.Point) orb.Ring {
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}
