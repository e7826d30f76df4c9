package clock

import (
	"testing"
	"time"
)

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	ch := f.After(5 * time.Second)
	f.Advance(4 * time.Second)
	select {
	case <-ch:
		t.Fatalf("timer fired before its deadline")
	default:
	}

	f.Advance(time.Second)
	select {
	case got := <-ch:
		if want := start.Add(5 * time.Second); !got.Equal(want) {
			t.Fatalf("fired at %v, want %v", got, want)
		}
	default:
		t.Fatalf("timer did not fire at its deadline")
	}

	if f.BlockUntil(1, 20*time.Millisecond) {
		t.Fatalf("fired timer still pending")
	}
}

func TestFakeAfterZeroFiresImmediately(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	select {
	case <-f.After(0):
	default:
		t.Fatalf("After(0) did not fire immediately")
	}
}

func TestFakeBlockUntil(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.After(time.Second)
	}()
	if !f.BlockUntil(1, time.Second) {
		t.Fatalf("BlockUntil(1) timed out")
	}
	if f.BlockUntil(2, 20*time.Millisecond) {
		t.Fatalf("BlockUntil(2) returned true with one waiter")
	}
}

func TestFakeStoppedTimerIsNotPending(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	timer := f.NewTimer(time.Second)
	if !f.BlockUntil(1, time.Second) {
		t.Fatalf("timer not registered")
	}
	timer.Stop()
	if f.BlockUntil(1, 20*time.Millisecond) {
		t.Fatalf("stopped timer still pending")
	}
}

func TestRealClockNow(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	if got.Before(before) {
		t.Fatalf("Real().Now() = %v, before %v", got, before)
	}
}
