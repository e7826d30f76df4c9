// Package monitor runs the geofence polling loop: fetch the current
// position, evaluate it against the zone catalog, and alert once per zone
// entry.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jengzang/campusguard-backend-go/internal/clock"
	"github.com/jengzang/campusguard-backend-go/internal/geofence"
	"github.com/jengzang/campusguard-backend-go/internal/logging"
	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/observability"
)

// State of a Monitor
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// DefaultTickTimeout bounds one location + catalog fetch
const DefaultTickTimeout = 10 * time.Second

// Status is a point-in-time view of the monitor
type Status struct {
	State        State         `json:"state"`
	Interval     time.Duration `json:"interval"`
	LastAlerted  string        `json:"lastAlertedZone,omitempty"`
	StartedAt    time.Time     `json:"startedAt,omitempty"`
	TicksSkipped int           `json:"ticksSkipped"`
}

// Monitor polls a LocationSource and raises de-duplicated breach alerts.
// Each Monitor owns its own state; several can run side by side.
type Monitor struct {
	source    LocationSource
	catalog   geofence.Catalog
	sink      AlertSink
	evaluator geofence.Evaluator
	clock     clock.Clock
	timeout   time.Duration
	log       *slog.Logger
	metrics   *observability.Metrics

	mu      sync.Mutex
	state   State
	gen     uint64
	ticket  *Ticket
	cancel  context.CancelFunc
	status  Status
	skipped int
}

// Option configures a Monitor
type Option func(*Monitor)

// WithClock sets the time source (defaults to the wall clock)
func WithClock(c clock.Clock) Option { return func(m *Monitor) { m.clock = c } }

// WithPolicy sets the zone matching policy
func WithPolicy(p geofence.Policy) Option { return func(m *Monitor) { m.evaluator.Policy = p } }

// WithTickTimeout bounds each tick's upstream fetches
func WithTickTimeout(d time.Duration) Option { return func(m *Monitor) { m.timeout = d } }

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option { return func(m *Monitor) { m.log = l } }

// WithMetrics sets the metrics collector
func WithMetrics(mt *observability.Metrics) Option { return func(m *Monitor) { m.metrics = mt } }

// New builds an idle Monitor
func New(source LocationSource, catalog geofence.Catalog, sink AlertSink, opts ...Option) *Monitor {
	m := &Monitor{
		source:  source,
		catalog: catalog,
		sink:    sink,
		clock:   clock.Real(),
		timeout: DefaultTickTimeout,
		log:     logging.Discard(),
		state:   StateIdle,
		status:  Status{State: StateIdle},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ticket identifies one run of a Monitor. Stopping a ticket from an earlier
// run is a no-op.
type Ticket struct {
	m    *Monitor
	gen  uint64
	done chan struct{}
}

// Stop ends the run this ticket belongs to
func (t *Ticket) Stop() { t.m.stopGen(t.gen) }

// Done is closed once the run's loop goroutine has exited
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Start begins polling every interval. The first tick runs one interval
// after Start. Calling Start while running returns the live ticket and does
// not start a second loop.
func (m *Monitor) Start(interval time.Duration) (*Ticket, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %v", interval)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateRunning {
		return m.ticket, nil
	}

	m.gen++
	ctx, cancel := context.WithCancel(context.Background())
	t := &Ticket{m: m, gen: m.gen, done: make(chan struct{})}

	m.state = StateRunning
	m.ticket = t
	m.cancel = cancel
	m.skipped = 0
	m.status = Status{State: StateRunning, Interval: interval, StartedAt: m.clock.Now()}
	m.metrics.SetMonitorRunning(true)

	go m.loop(ctx, t.gen, interval, t.done)

	m.log.Info("monitor_started", "interval", interval, "policy", m.evaluator.Policy.String())
	return t, nil
}

// Stop cancels the current run and clears the last alerted zone. It does
// not wait for an in-flight tick; that tick's result is discarded.
func (m *Monitor) Stop() {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()
	m.stopGen(gen)
}

func (m *Monitor) stopGen(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateRunning || m.gen != gen {
		return
	}
	m.cancel()
	m.state = StateIdle
	m.ticket = nil
	m.cancel = nil
	m.status = Status{State: StateIdle}
	m.metrics.SetMonitorRunning(false)
	m.log.Info("monitor_stopped")
}

// Status returns a snapshot of the monitor state
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status
	s.TicksSkipped = m.skipped
	return s
}

// loop waits a full interval after each tick completes, so ticks never
// overlap.
func (m *Monitor) loop(ctx context.Context, gen uint64, interval time.Duration, done chan struct{}) {
	defer close(done)
	for {
		timer := m.clock.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
		if ctx.Err() != nil {
			return
		}
		m.tick(ctx, gen)
	}
}

func (m *Monitor) tick(ctx context.Context, gen uint64) {
	ctx, span := observability.Tracer().Start(ctx, "monitor.tick")
	defer span.End()

	tickCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	loc, err := m.source.CurrentLocation(tickCtx)
	if err != nil {
		m.skip(gen, observability.TickLocationUnavailable, err)
		return
	}

	zones, err := m.catalog.RestrictedZones(tickCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog unavailable")
		m.skip(gen, observability.TickCatalogUnavailable, err)
		return
	}

	breach, err := m.evaluator.Evaluate(loc, zones)
	if err != nil {
		m.skip(gen, observability.TickInvalidLocation, err)
		return
	}

	m.mu.Lock()
	if m.gen != gen || m.state != StateRunning || ctx.Err() != nil {
		m.mu.Unlock()
		m.metrics.ObserveTick(observability.TickDiscarded)
		return
	}
	m.metrics.ObserveTick(observability.TickEvaluated)

	if breach == nil {
		if m.status.LastAlerted != "" {
			m.log.Debug("monitor_zone_exit", "zone", m.status.LastAlerted)
		}
		m.status.LastAlerted = ""
		m.mu.Unlock()
		return
	}
	if breach.ZoneID == m.status.LastAlerted {
		m.mu.Unlock()
		return
	}
	m.status.LastAlerted = breach.ZoneID
	m.mu.Unlock()

	event := models.BreachEvent{
		EventID:    uuid.NewString(),
		Breach:     *breach,
		Location:   loc,
		DetectedAt: m.clock.Now(),
	}
	span.SetAttributes(
		attribute.String("zone.id", breach.ZoneID),
		attribute.String("zone.severity", string(breach.Severity)),
	)
	m.log.Warn("geofence_breach", "zone", breach.ZoneID, "severity", breach.Severity, "location", loc.String())
	m.metrics.ObserveAlert(string(breach.Severity))
	m.dispatch(ctx, event)
}

// skip leaves the last alerted zone untouched: an unknown position is not
// the same as being outside every zone.
func (m *Monitor) skip(gen uint64, outcome string, err error) {
	m.mu.Lock()
	if m.gen == gen {
		m.skipped++
	}
	m.mu.Unlock()

	m.metrics.ObserveTick(outcome)
	if errors.Is(err, context.Canceled) {
		return
	}
	m.log.Debug("monitor_tick_skipped", "reason", outcome, "err", err)
}

func (m *Monitor) dispatch(ctx context.Context, event models.BreachEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("alert_sink_panic", "event", event.EventID, "panic", r)
		}
	}()
	if m.sink != nil {
		m.sink.OnBreach(ctx, event)
	}
}
