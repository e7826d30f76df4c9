package models

import "github.com/jengzang/campusguard-backend-go/internal/spatial"

// Directions is a straight-line distance and walking-time estimate
type Directions struct {
	DistanceMeters float64 `json:"distanceMeters"`
	DistanceLabel  string  `json:"distance"` // "850m", "1.23km"
	Minutes        int     `json:"minutes"`
	DurationLabel  string  `json:"duration"` // "10 min walk"
}

// NearestFacilityResponse bundles a resolved facility with its estimate and
// the approximate path used for drawing.
type NearestFacilityResponse struct {
	Resolved   ResolvedFacility `json:"resolved"`
	Directions Directions       `json:"directions"`
	Route      []spatial.Point  `json:"route"` // straight-line approximation, not a walkable route
}
