// Package observability holds Prometheus metrics and OpenTelemetry tracing
// setup for the engine.
package observability

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Tick outcomes recorded by the monitor
const (
	TickEvaluated           = "evaluated"
	TickLocationUnavailable = "location_unavailable"
	TickCatalogUnavailable  = "catalog_unavailable"
	TickInvalidLocation     = "invalid_location"
	TickDiscarded           = "discarded"
)

// Metrics bundles the engine's collectors. A nil *Metrics is valid and
// records nothing, so components can take it as an optional dependency.
type Metrics struct {
	MonitorTicks   *prometheus.CounterVec
	MonitorAlerts  *prometheus.CounterVec
	MonitorRunning prometheus.Gauge

	HeatmapPings   *prometheus.CounterVec
	HeatmapQueries *prometheus.CounterVec

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{}
	var err error

	if m.MonitorTicks, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geofence_monitor_ticks_total",
		Help: "Monitor ticks by outcome.",
	}, []string{"outcome"}), "geofence_monitor_ticks_total"); err != nil {
		return nil, err
	}
	if m.MonitorAlerts, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geofence_monitor_alerts_total",
		Help: "Breach alerts handed to the sink, by zone severity.",
	}, []string{"severity"}), "geofence_monitor_alerts_total"); err != nil {
		return nil, err
	}
	if m.MonitorRunning, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geofence_monitor_running",
		Help: "1 while a monitor loop is running.",
	}), "geofence_monitor_running"); err != nil {
		return nil, err
	}
	if m.HeatmapPings, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_pings_total",
		Help: "Heatmap pings by result (accepted, rejected, failed).",
	}, []string{"result"}), "heatmap_pings_total"); err != nil {
		return nil, err
	}
	if m.HeatmapQueries, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_queries_total",
		Help: "Heatmap queries by window and degraded flag.",
	}, []string{"window", "degraded"}), "heatmap_queries_total"); err != nil {
		return nil, err
	}
	if m.HTTPRequests, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"}), "http_requests_total"); err != nil {
		return nil, err
	}
	if m.HTTPDurations, err = registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"}), "http_request_duration_seconds"); err != nil {
		return nil, err
	}

	return m, nil
}

// ObserveTick counts one monitor tick
func (m *Metrics) ObserveTick(outcome string) {
	if m == nil {
		return
	}
	m.MonitorTicks.WithLabelValues(outcome).Inc()
}

// ObserveAlert counts one alert dispatched to the sink
func (m *Metrics) ObserveAlert(severity string) {
	if m == nil {
		return
	}
	m.MonitorAlerts.WithLabelValues(severity).Inc()
}

// SetMonitorRunning flips the running gauge
func (m *Metrics) SetMonitorRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.MonitorRunning.Set(1)
	} else {
		m.MonitorRunning.Set(0)
	}
}

// ObservePing counts one heatmap ping
func (m *Metrics) ObservePing(result string) {
	if m == nil {
		return
	}
	m.HeatmapPings.WithLabelValues(result).Inc()
}

// ObserveHeatmapQuery counts one heatmap query
func (m *Metrics) ObserveHeatmapQuery(window string, degraded bool) {
	if m == nil {
		return
	}
	m.HeatmapQueries.WithLabelValues(window, strconv.FormatBool(degraded)).Inc()
}

// GinMiddleware records request counts and latency per route template
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDurations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
