// Package clock abstracts time so polling loops can run on virtual time in
// tests.
package clock

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the time source used by the monitor, heatmap and rate limiter
type Clock = clockwork.Clock

// Real returns a Clock backed by the time package
func Real() Clock { return clockwork.NewRealClock() }

// Fake is a manually advanced Clock. Timers fire only from Advance.
type Fake struct {
	*clockwork.FakeClock
}

// NewFake returns a Fake starting at start
func NewFake(start time.Time) *Fake {
	return &Fake{FakeClock: clockwork.NewFakeClockAt(start)}
}

// BlockUntil waits until at least n timers are pending, or the timeout
// passes. It reports whether the condition was met.
func (f *Fake) BlockUntil(n int, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.BlockUntilContext(ctx, n) == nil
}
