// Package heatmap aggregates anonymous location pings into geohash cells
// over rolling windows and only discloses cells that meet a privacy floor.
package heatmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/clock"
	"github.com/jengzang/campusguard-backend-go/internal/logging"
	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/observability"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

const (
	// MinPrivacyFloor is the lowest count a disclosed cell may have.
	// Configuration can raise the floor, never lower it.
	MinPrivacyFloor = 3
	// DefaultPrecision is geohash length 7, roughly 150 m cells
	DefaultPrecision = 7
	// SlotSize is the counting granularity inside a window
	SlotSize = time.Minute
)

var (
	// ErrPingExpired is returned for pings older than every window
	ErrPingExpired = errors.New("ping is older than the retention window")
	// ErrUnknownWindow is returned for unsupported window names
	ErrUnknownWindow = errors.New("unknown heatmap window")
	// ErrStoreUnavailable wraps ping store failures
	ErrStoreUnavailable = errors.New("heatmap store unavailable")
)

// Config tunes an Aggregator
type Config struct {
	Precision int
	MinCount  int
	Location  *time.Location // day boundary for the "today" window
}

// Aggregator buckets pings into cells and answers windowed queries
type Aggregator struct {
	store   Store
	clock   clock.Clock
	cfg     Config
	log     *slog.Logger
	metrics *observability.Metrics

	mu        sync.Mutex
	lastEvict time.Time
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock sets the time source
func WithClock(c clock.Clock) Option { return func(a *Aggregator) { a.clock = c } }

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option { return func(a *Aggregator) { a.log = l } }

// WithMetrics sets the metrics collector
func WithMetrics(m *observability.Metrics) Option { return func(a *Aggregator) { a.metrics = m } }

// New builds an Aggregator over store
func New(store Store, cfg Config, opts ...Option) *Aggregator {
	if cfg.Precision < spatial.MinGeohashPrecision || cfg.Precision > spatial.MaxGeohashPrecision {
		cfg.Precision = DefaultPrecision
	}
	if cfg.MinCount < MinPrivacyFloor {
		cfg.MinCount = MinPrivacyFloor
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	a := &Aggregator{
		store: store,
		clock: clock.Real(),
		cfg:   cfg,
		log:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MinCount returns the effective privacy floor
func (a *Aggregator) MinCount() int { return a.cfg.MinCount }

// CellKey returns the cell a point falls into
func (a *Aggregator) CellKey(p spatial.Point) string {
	return spatial.EncodeGeohash(p, a.cfg.Precision)
}

// RecordPing counts one ping. A zero ts means now; timestamps ahead of the
// clock are clamped to now.
func (a *Aggregator) RecordPing(ctx context.Context, p spatial.Point, ts time.Time) error {
	if err := p.Validate(); err != nil {
		a.metrics.ObservePing("rejected")
		return err
	}

	now := a.clock.Now()
	if ts.IsZero() || ts.After(now) {
		ts = now
	}
	cutoff := a.retentionCutoff(now)
	if ts.Before(cutoff) {
		a.metrics.ObservePing("rejected")
		return fmt.Errorf("%w: %s", ErrPingExpired, ts.Format(time.RFC3339))
	}

	cell := a.CellKey(p)
	if err := a.store.Increment(ctx, cell, ts.Truncate(SlotSize), ts); err != nil {
		a.metrics.ObservePing("failed")
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	a.metrics.ObservePing("accepted")

	a.maybeEvict(ctx, now)
	return nil
}

// QueryCells returns the cells of window at or above the privacy floor,
// hottest first. If the store fails the result is marked Degraded with no
// cells. The only error is ErrUnknownWindow.
func (a *Aggregator) QueryCells(ctx context.Context, window models.HeatmapWindow) (models.HeatmapResult, error) {
	if !window.Valid() {
		return models.HeatmapResult{}, fmt.Errorf("%w: %q", ErrUnknownWindow, window)
	}

	now := a.clock.Now()
	res := models.HeatmapResult{Window: window, MinCount: a.cfg.MinCount, Cells: []models.HeatmapCell{}}

	from := slotCeil(a.windowStart(window, now))
	counts, err := a.store.Counts(ctx, from, now)
	if err != nil {
		a.log.Warn("heatmap_store_unavailable", "window", window, "err", err)
		res.Degraded = true
		a.metrics.ObserveHeatmapQuery(string(window), true)
		return res, nil
	}

	for _, cc := range counts {
		if cc.Count < a.cfg.MinCount {
			continue
		}
		center, err := spatial.DecodeGeohash(cc.Cell)
		if err != nil {
			a.log.Warn("heatmap_bad_cell_key", "cell", cc.Cell, "err", err)
			continue
		}
		res.Cells = append(res.Cells, models.HeatmapCell{
			Key:         cc.Cell,
			Center:      center,
			Count:       cc.Count,
			LastUpdated: cc.LastUpdated,
		})
	}
	sort.Slice(res.Cells, func(i, j int) bool {
		if res.Cells[i].Count != res.Cells[j].Count {
			return res.Cells[i].Count > res.Cells[j].Count
		}
		return res.Cells[i].Key < res.Cells[j].Key
	})

	a.maybeEvict(ctx, now)
	a.metrics.ObserveHeatmapQuery(string(window), false)
	return res, nil
}

func (a *Aggregator) windowStart(w models.HeatmapWindow, now time.Time) time.Time {
	switch w {
	case models.Window15Min:
		return now.Add(-15 * time.Minute)
	case models.Window1Hour:
		return now.Add(-time.Hour)
	default:
		local := now.In(a.cfg.Location)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.cfg.Location)
	}
}

// slotCeil rounds t up to a slot boundary. A window starts at its first
// whole slot so it never counts pings older than its length.
func slotCeil(t time.Time) time.Time {
	s := t.Truncate(SlotSize)
	if s.Before(t) {
		s = s.Add(SlotSize)
	}
	return s
}

// retentionCutoff is the earliest instant any window can still cover
func (a *Aggregator) retentionCutoff(now time.Time) time.Time {
	today := a.windowStart(models.WindowToday, now)
	hour := a.windowStart(models.Window1Hour, now)
	if hour.Before(today) {
		return hour.Truncate(SlotSize)
	}
	return today.Truncate(SlotSize)
}

func (a *Aggregator) maybeEvict(ctx context.Context, now time.Time) {
	a.mu.Lock()
	if now.Sub(a.lastEvict) < SlotSize {
		a.mu.Unlock()
		return
	}
	a.lastEvict = now
	a.mu.Unlock()

	if err := a.store.Evict(ctx, a.retentionCutoff(now)); err != nil {
		a.log.Warn("heatmap_evict_failed", "err", err)
	}
}
