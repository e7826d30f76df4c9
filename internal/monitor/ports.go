package monitor

import (
	"context"
	"errors"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// ErrLocationUnavailable is returned by location sources with no fix
var ErrLocationUnavailable = errors.New("location unavailable")

// LocationSource supplies the observer's current position
type LocationSource interface {
	CurrentLocation(ctx context.Context) (spatial.Point, error)
}

// AlertSink receives breach events. Delivery is fire-and-forget: the
// monitor does not retry and does not look at the outcome.
type AlertSink interface {
	OnBreach(ctx context.Context, event models.BreachEvent)
}

// SinkFunc adapts a function to AlertSink
type SinkFunc func(ctx context.Context, event models.BreachEvent)

func (f SinkFunc) OnBreach(ctx context.Context, event models.BreachEvent) { f(ctx, event) }

// MultiSink fans an event out to several sinks in order
type MultiSink []AlertSink

func (m MultiSink) OnBreach(ctx context.Context, event models.BreachEvent) {
	for _, s := range m {
		if s != nil {
			s.OnBreach(ctx, event)
		}
	}
}

// LocationFunc adapts a function to LocationSource
type LocationFunc func(ctx context.Context) (spatial.Point, error)

func (f LocationFunc) CurrentLocation(ctx context.Context) (spatial.Point, error) { return f(ctx) }
