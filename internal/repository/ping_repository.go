package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/database"
	"github.com/jengzang/campusguard-backend-go/internal/heatmap"
)

// PingRepository stores heatmap slot counters in SQL. Slots are unix
// seconds, last_updated is unix millis.
type PingRepository struct {
	db *database.DB
}

// NewPingRepository creates a new ping repository
func NewPingRepository(db *database.DB) *PingRepository {
	return &PingRepository{db: db}
}

var _ heatmap.Store = (*PingRepository)(nil)

// Increment upserts the (cell, slot) counter
func (r *PingRepository) Increment(ctx context.Context, cell string, slot, at time.Time) error {
	query := r.db.Rebind(`INSERT INTO heatmap_slots (cell, slot, count, last_updated)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (cell, slot) DO UPDATE SET
			count = heatmap_slots.count + 1,
			last_updated = CASE
				WHEN excluded.last_updated > heatmap_slots.last_updated THEN excluded.last_updated
				ELSE heatmap_slots.last_updated
			END`)

	if _, err := r.db.ExecContext(ctx, query, cell, slot.Unix(), at.UnixMilli()); err != nil {
		return fmt.Errorf("failed to increment cell %s: %w", cell, err)
	}
	return nil
}

// Counts sums each cell over slots in [from, to]
func (r *PingRepository) Counts(ctx context.Context, from, to time.Time) ([]heatmap.CellCount, error) {
	query := r.db.Rebind(`SELECT cell, SUM(count), MAX(last_updated)
		FROM heatmap_slots
		WHERE slot >= ? AND slot <= ?
		GROUP BY cell`)

	rows, err := r.db.QueryContext(ctx, query, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query heatmap slots: %w", err)
	}
	defer rows.Close()

	var counts []heatmap.CellCount
	for rows.Next() {
		var cell string
		var count, lastMillis int64
		if err := rows.Scan(&cell, &count, &lastMillis); err != nil {
			return nil, fmt.Errorf("failed to scan heatmap slot: %w", err)
		}
		counts = append(counts, heatmap.CellCount{
			Cell:        cell,
			Count:       int(count),
			LastUpdated: time.UnixMilli(lastMillis).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate heatmap slots: %w", err)
	}

	return counts, nil
}

// Evict deletes slots that start before the cutoff
func (r *PingRepository) Evict(ctx context.Context, before time.Time) error {
	query := r.db.Rebind("DELETE FROM heatmap_slots WHERE slot < ?")
	if _, err := r.db.ExecContext(ctx, query, before.Unix()); err != nil {
		return fmt.Errorf("failed to evict heatmap slots: %w", err)
	}
	return nil
}
