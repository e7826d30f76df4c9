package models

import (
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// HeatmapWindow names a rolling aggregation window
type HeatmapWindow string

const (
	Window15Min HeatmapWindow = "15min"
	Window1Hour HeatmapWindow = "1hr"
	WindowToday HeatmapWindow = "today"
)

// Valid reports whether w is a supported window
func (w HeatmapWindow) Valid() bool {
	switch w {
	case Window15Min, Window1Hour, WindowToday:
		return true
	}
	return false
}

// HeatmapCell is an aggregated grid cell. Only cells at or above the privacy
// floor ever leave the aggregator.
type HeatmapCell struct {
	Key         string        `json:"key"` // geohash
	Center      spatial.Point `json:"center"`
	Count       int           `json:"count"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

// HeatmapResult is the response of a heatmap query. Degraded means the ping
// store was unavailable and Cells is empty for that reason, not because the
// campus is empty.
type HeatmapResult struct {
	Window   HeatmapWindow `json:"window"`
	MinCount int           `json:"minCount"`
	Cells    []HeatmapCell `json:"cells"`
	Degraded bool          `json:"degraded"`
}
