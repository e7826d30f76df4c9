package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jengzang/campusguard-backend-go/internal/database"
	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// CatalogRepository serves zones and facilities from SQL. Catalog order is
// the position column.
type CatalogRepository struct {
	db *database.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// RestrictedZones returns every zone in catalog order
func (r *CatalogRepository) RestrictedZones(ctx context.Context) ([]models.Zone, error) {
	query := `SELECT id, name, severity, description, shape, ring_json,
		center_lat, center_lon, radius_meters
		FROM zones ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones: %w", err)
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		var z models.Zone
		var ring string
		var centerLat, centerLon sql.NullFloat64

		if err := rows.Scan(&z.ID, &z.Name, &z.Severity, &z.Description, &z.Shape, &ring,
			&centerLat, &centerLon, &z.RadiusMeters); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}

		if ring != "" && ring != "[]" {
			if err := json.Unmarshal([]byte(ring), &z.Polygon); err != nil {
				return nil, fmt.Errorf("zone %s: failed to decode ring: %w", z.ID, err)
			}
		}
		if centerLat.Valid && centerLon.Valid {
			z.Center = &spatial.Point{Lat: centerLat.Float64, Lon: centerLon.Float64}
		}

		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}

	return zones, nil
}

// EmergencyFacilities returns every facility in catalog order
func (r *CatalogRepository) EmergencyFacilities(ctx context.Context) ([]models.Facility, error) {
	query := `SELECT id, name, type, lat, lon, priority
		FROM facilities ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer rows.Close()

	facilities := []models.Facility{}
	for rows.Next() {
		var f models.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Type, &f.Location.Lat, &f.Location.Lon, &f.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate facilities: %w", err)
	}

	return facilities, nil
}

// ReplaceCatalog swaps the whole catalog in one transaction. Slice order
// becomes catalog order. Zones and facilities are validated first so a bad
// import leaves the existing catalog untouched.
func (r *CatalogRepository) ReplaceCatalog(ctx context.Context, zones []models.Zone, facilities []models.Facility) error {
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return fmt.Errorf("invalid zone: %w", err)
		}
	}
	for _, f := range facilities {
		if f.ID == "" {
			return fmt.Errorf("facility has empty id")
		}
		if err := f.Location.Validate(); err != nil {
			return fmt.Errorf("facility %s: %w", f.ID, err)
		}
	}

	insertZone := r.db.Rebind(`INSERT INTO zones
		(id, name, severity, description, shape, ring_json, center_lat, center_lon, radius_meters, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	insertFacility := r.db.Rebind(`INSERT INTO facilities
		(id, name, type, lat, lon, priority, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM zones"); err != nil {
			return fmt.Errorf("failed to clear zones: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM facilities"); err != nil {
			return fmt.Errorf("failed to clear facilities: %w", err)
		}

		for i, z := range zones {
			ring, err := json.Marshal(z.Polygon)
			if err != nil {
				return fmt.Errorf("zone %s: failed to encode ring: %w", z.ID, err)
			}
			if z.Polygon == nil {
				ring = []byte("[]")
			}

			var centerLat, centerLon sql.NullFloat64
			if z.Center != nil {
				centerLat = sql.NullFloat64{Float64: z.Center.Lat, Valid: true}
				centerLon = sql.NullFloat64{Float64: z.Center.Lon, Valid: true}
			}

			if _, err := tx.ExecContext(ctx, insertZone, z.ID, z.Name, string(z.Severity), z.Description,
				string(z.Shape), string(ring), centerLat, centerLon, z.RadiusMeters, i); err != nil {
				return fmt.Errorf("failed to insert zone %s: %w", z.ID, err)
			}
		}

		for i, f := range facilities {
			if _, err := tx.ExecContext(ctx, insertFacility, f.ID, f.Name, string(f.Type),
				f.Location.Lat, f.Location.Lon, f.Priority, i); err != nil {
				return fmt.Errorf("failed to insert facility %s: %w", f.ID, err)
			}
		}

		return nil
	})
}
