package models

// PointQuery binds a single coordinate from the query string
type PointQuery struct {
	Lat *float64 `form:"lat" json:"lat" binding:"required"`
	Lon *float64 `form:"lon" json:"lon" binding:"required"`
}

// NearestFacilityQuery binds GET /api/v1/emergency/nearest
type NearestFacilityQuery struct {
	Lat   *float64 `form:"lat" binding:"required"`
	Lon   *float64 `form:"lon" binding:"required"`
	Type  string   `form:"type"`  // medical, security, exit; empty = any
	Steps int      `form:"steps"` // route points - 1, at most 500
}

// DirectionsQuery binds GET /api/v1/directions
type DirectionsQuery struct {
	FromLat *float64 `form:"fromLat" binding:"required"`
	FromLon *float64 `form:"fromLon" binding:"required"`
	ToLat   *float64 `form:"toLat" binding:"required"`
	ToLon   *float64 `form:"toLon" binding:"required"`
	Steps   int      `form:"steps"`
}

// HeatmapQuery binds GET /api/v1/heatmap/cells
type HeatmapQuery struct {
	Window string `form:"window"` // 15min, 1hr, today
}

// PingRequest is one anonymous location ping. Timestamp is unix seconds;
// zero means "now".
type PingRequest struct {
	Lat       *float64 `json:"lat" binding:"required"`
	Lon       *float64 `json:"lon" binding:"required"`
	Timestamp int64    `json:"timestamp"`
}

// MonitorStartRequest is the body of POST /api/v1/monitor/start
type MonitorStartRequest struct {
	IntervalMs int64 `json:"intervalMs"`
}
