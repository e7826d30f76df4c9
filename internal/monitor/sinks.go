package monitor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jengzang/campusguard-backend-go/internal/models"
)

// LogSink writes every breach event to a logger
type LogSink struct {
	Log *slog.Logger
}

func (s LogSink) OnBreach(_ context.Context, event models.BreachEvent) {
	if s.Log == nil {
		return
	}
	s.Log.Warn("breach_alert",
		"event", event.EventID,
		"zone", event.Breach.ZoneID,
		"name", event.Breach.ZoneName,
		"severity", event.Breach.Severity,
		"lat", event.Location.Lat,
		"lon", event.Location.Lon,
	)
}

// AlertLog keeps the most recent breach events in memory, newest last.
// Events with an EventID already held are ignored.
type AlertLog struct {
	mu       sync.RWMutex
	capacity int
	events   []models.BreachEvent
	seen     map[string]struct{}
}

// NewAlertLog returns an AlertLog holding up to capacity events
func NewAlertLog(capacity int) *AlertLog {
	if capacity <= 0 {
		capacity = 500
	}
	return &AlertLog{
		capacity: capacity,
		events:   make([]models.BreachEvent, 0, capacity),
		seen:     make(map[string]struct{}, capacity),
	}
}

func (a *AlertLog) OnBreach(_ context.Context, event models.BreachEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, dup := a.seen[event.EventID]; dup {
		return
	}
	a.events = append(a.events, event)
	a.seen[event.EventID] = struct{}{}
	if len(a.events) > a.capacity {
		drop := len(a.events) - a.capacity
		for _, e := range a.events[:drop] {
			delete(a.seen, e.EventID)
		}
		a.events = append(a.events[:0:0], a.events[drop:]...)
	}
}

// Recent returns up to limit of the newest events, newest first
func (a *AlertLog) Recent(limit int) []models.BreachEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit <= 0 || limit > len(a.events) {
		limit = len(a.events)
	}
	out := make([]models.BreachEvent, 0, limit)
	for i := len(a.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.events[i])
	}
	return out
}

// Len returns the number of events held
func (a *AlertLog) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.events)
}
