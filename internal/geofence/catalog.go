// Package geofence evaluates positions against restricted campus zones.
package geofence

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/models"
)

// Catalog is the read port for zones and facilities. An error means the
// catalog state is unknown; callers must not treat it as "no zones".
type Catalog interface {
	RestrictedZones(ctx context.Context) ([]models.Zone, error)
	EmergencyFacilities(ctx context.Context) ([]models.Facility, error)
}

// StaticCatalog serves a fixed set of zones and facilities
type StaticCatalog struct {
	Zones      []models.Zone
	Facilities []models.Facility
}

func (c *StaticCatalog) RestrictedZones(ctx context.Context) ([]models.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Zone, len(c.Zones))
	copy(out, c.Zones)
	return out, nil
}

func (c *StaticCatalog) EmergencyFacilities(ctx context.Context) ([]models.Facility, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Facility, len(c.Facilities))
	copy(out, c.Facilities)
	return out, nil
}

// CachedCatalog keeps a snapshot of an upstream catalog for ttl. Once the
// snapshot expires the next call goes upstream; a failed refresh returns the
// error rather than the expired snapshot. Callers get their own copy of the
// snapshot slice.
type CachedCatalog struct {
	upstream Catalog
	ttl      time.Duration
	now      func() time.Time

	mu           sync.Mutex
	zones        []models.Zone
	zonesAt      time.Time
	facilities   []models.Facility
	facilitiesAt time.Time
}

// NewCachedCatalog wraps upstream with a ttl snapshot cache
func NewCachedCatalog(upstream Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{upstream: upstream, ttl: ttl, now: time.Now}
}

func (c *CachedCatalog) RestrictedZones(ctx context.Context) ([]models.Zone, error) {
	c.mu.Lock()
	if c.zones != nil && c.now().Sub(c.zonesAt) < c.ttl {
		zones := slices.Clone(c.zones)
		c.mu.Unlock()
		return zones, nil
	}
	c.mu.Unlock()

	zones, err := c.upstream.RestrictedZones(ctx)
	if err != nil {
		return nil, err
	}
	if zones == nil {
		zones = []models.Zone{}
	}

	c.mu.Lock()
	c.zones = zones
	c.zonesAt = c.now()
	c.mu.Unlock()
	return slices.Clone(zones), nil
}

func (c *CachedCatalog) EmergencyFacilities(ctx context.Context) ([]models.Facility, error) {
	c.mu.Lock()
	if c.facilities != nil && c.now().Sub(c.facilitiesAt) < c.ttl {
		facilities := slices.Clone(c.facilities)
		c.mu.Unlock()
		return facilities, nil
	}
	c.mu.Unlock()

	facilities, err := c.upstream.EmergencyFacilities(ctx)
	if err != nil {
		return nil, err
	}
	if facilities == nil {
		facilities = []models.Facility{}
	}

	c.mu.Lock()
	c.facilities = facilities
	c.facilitiesAt = c.now()
	c.mu.Unlock()
	return slices.Clone(facilities), nil
}

// Invalidate drops both snapshots so the next call reloads
func (c *CachedCatalog) Invalidate() {
	c.mu.Lock()
	c.zones = nil
	c.facilities = nil
	c.mu.Unlock()
}
