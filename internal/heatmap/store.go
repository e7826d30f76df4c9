package heatmap

import (
	"context"
	"sync"
	"time"
)

// CellCount is the summed count of one cell over a range of slots
type CellCount struct {
	Cell        string
	Count       int
	LastUpdated time.Time
}

// Store persists per-cell, per-slot ping counts. Slots are identified by
// their start time.
type Store interface {
	// Increment adds one ping to cell in slot; at is the ping time.
	Increment(ctx context.Context, cell string, slot, at time.Time) error
	// Counts sums every cell over slots with from <= slot <= to.
	Counts(ctx context.Context, from, to time.Time) ([]CellCount, error)
	// Evict drops slots that start before the cutoff.
	Evict(ctx context.Context, before time.Time) error
}

// MemoryStore keeps a sliding window of slot counters per cell in memory
type MemoryStore struct {
	mu    sync.Mutex
	cells map[string]map[int64]*slotCount
}

type slotCount struct {
	count int
	last  time.Time
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cells: make(map[string]map[int64]*slotCount)}
}

func (s *MemoryStore) Increment(_ context.Context, cell string, slot, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, ok := s.cells[cell]
	if !ok {
		slots = make(map[int64]*slotCount)
		s.cells[cell] = slots
	}
	sc, ok := slots[slot.Unix()]
	if !ok {
		sc = &slotCount{}
		slots[slot.Unix()] = sc
	}
	sc.count++
	if at.After(sc.last) {
		sc.last = at
	}
	return nil
}

func (s *MemoryStore) Counts(_ context.Context, from, to time.Time) ([]CellCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := from.Unix(), to.Unix()
	var out []CellCount
	for cell, slots := range s.cells {
		cc := CellCount{Cell: cell}
		for start, sc := range slots {
			if start < lo || start > hi {
				continue
			}
			cc.Count += sc.count
			if sc.last.After(cc.LastUpdated) {
				cc.LastUpdated = sc.last
			}
		}
		if cc.Count > 0 {
			out = append(out, cc)
		}
	}
	return out, nil
}

func (s *MemoryStore) Evict(_ context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := before.Unix()
	for cell, slots := range s.cells {
		for start := range slots {
			if start < cutoff {
				delete(slots, start)
			}
		}
		if len(slots) == 0 {
			delete(s.cells, cell)
		}
	}
	return nil
}

// Len returns the number of cells currently held
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cells)
}
