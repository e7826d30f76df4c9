package service

import (
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/location"
	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/monitor"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// MonitorView is the API shape of the monitor status
type MonitorView struct {
	State        monitor.State  `json:"state"`
	IntervalMs   int64          `json:"intervalMs"`
	LastAlerted  string         `json:"lastAlertedZone,omitempty"`
	StartedAt    *time.Time     `json:"startedAt,omitempty"`
	TicksSkipped int            `json:"ticksSkipped"`
	Location     *spatial.Point `json:"location,omitempty"`
	LocationAt   *time.Time     `json:"locationAt,omitempty"`
}

// MonitorService controls the background geofence monitor
type MonitorService struct {
	mon             *monitor.Monitor
	tracker         *location.Tracker
	alerts          *monitor.AlertLog
	defaultInterval time.Duration
}

// NewMonitorService creates a new monitor service
func NewMonitorService(mon *monitor.Monitor, tracker *location.Tracker, alerts *monitor.AlertLog, defaultInterval time.Duration) *MonitorService {
	return &MonitorService{mon: mon, tracker: tracker, alerts: alerts, defaultInterval: defaultInterval}
}

// Start begins monitoring. intervalMs <= 0 uses the configured default.
// Starting a running monitor keeps the existing loop.
func (s *MonitorService) Start(intervalMs int64) (MonitorView, error) {
	interval := s.defaultInterval
	if intervalMs > 0 {
		interval = time.Duration(intervalMs) * time.Millisecond
	}
	if _, err := s.mon.Start(interval); err != nil {
		return MonitorView{}, err
	}
	return s.Status(), nil
}

// Stop halts monitoring
func (s *MonitorService) Stop() MonitorView {
	s.mon.Stop()
	return s.Status()
}

// Status reports the monitor state and the last known position
func (s *MonitorService) Status() MonitorView {
	st := s.mon.Status()
	view := MonitorView{
		State:        st.State,
		IntervalMs:   st.Interval.Milliseconds(),
		LastAlerted:  st.LastAlerted,
		TicksSkipped: st.TicksSkipped,
	}
	if !st.StartedAt.IsZero() {
		started := st.StartedAt
		view.StartedAt = &started
	}
	if p, at, ok := s.tracker.Last(); ok {
		view.Location = &p
		view.LocationAt = &at
	}
	return view
}

// ReportLocation feeds the monitored device position
func (s *MonitorService) ReportLocation(p spatial.Point) error {
	return s.tracker.Report(p)
}

// Alerts returns the most recent breach events, newest first
func (s *MonitorService) Alerts(limit int) []models.BreachEvent {
	return s.alerts.Recent(limit)
}
