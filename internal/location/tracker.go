// Package location provides LocationSource implementations for the monitor.
package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/clock"
	"github.com/jengzang/campusguard-backend-go/internal/monitor"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// Tracker holds the latest position reported by a device. A position older
// than maxAge is treated as unavailable.
type Tracker struct {
	clock  clock.Clock
	maxAge time.Duration

	mu         sync.RWMutex
	point      spatial.Point
	reportedAt time.Time
	has        bool
}

// NewTracker returns an empty Tracker. maxAge <= 0 disables staleness.
func NewTracker(c clock.Clock, maxAge time.Duration) *Tracker {
	if c == nil {
		c = clock.Real()
	}
	return &Tracker{clock: c, maxAge: maxAge}
}

// Report records a new position
func (t *Tracker) Report(p spatial.Point) error {
	if err := p.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	t.point = p
	t.reportedAt = t.clock.Now()
	t.has = true
	t.mu.Unlock()
	return nil
}

// CurrentLocation implements monitor.LocationSource
func (t *Tracker) CurrentLocation(ctx context.Context) (spatial.Point, error) {
	if err := ctx.Err(); err != nil {
		return spatial.Point{}, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.has {
		return spatial.Point{}, monitor.ErrLocationUnavailable
	}
	if t.maxAge > 0 {
		if age := t.clock.Now().Sub(t.reportedAt); age > t.maxAge {
			return spatial.Point{}, fmt.Errorf("%w: last fix %v old", monitor.ErrLocationUnavailable, age)
		}
	}
	return t.point, nil
}

// Last returns the last reported point and when it was reported
func (t *Tracker) Last() (spatial.Point, time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.point, t.reportedAt, t.has
}

// Static always reports the same point
type Static spatial.Point

// CurrentLocation implements monitor.LocationSource
func (s Static) CurrentLocation(ctx context.Context) (spatial.Point, error) {
	if err := ctx.Err(); err != nil {
		return spatial.Point{}, err
	}
	return spatial.Point(s), nil
}
