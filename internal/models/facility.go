package models

import "github.com/jengzang/campusguard-backend-go/internal/spatial"

// FacilityType is open-ended; these are the well-known values
type FacilityType string

const (
	FacilityMedical  FacilityType = "medical"
	FacilitySecurity FacilityType = "security"
	FacilityExit     FacilityType = "exit"
)

// Facility is a fixed emergency point of interest
type Facility struct {
	ID       string        `json:"id" db:"id"`
	Name     string        `json:"name" db:"name"`
	Location spatial.Point `json:"location" db:"-"`
	Type     FacilityType  `json:"type" db:"type"`
	Priority int           `json:"priority" db:"priority"` // lower wins distance ties
}

// ResolvedFacility is the nearest facility for a query point
type ResolvedFacility struct {
	Facility       Facility `json:"facility"`
	DistanceMeters float64  `json:"distanceMeters"`
}
