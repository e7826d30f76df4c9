package models

import (
	"time"

	"github.com/jengzang/campusguard-backend-go/internal/spatial"
)

// Breach describes the zone a position fell into
type Breach struct {
	ZoneID      string   `json:"id"`
	ZoneName    string   `json:"name"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}

// NewBreach builds the breach result for a matched zone
func NewBreach(z Zone) *Breach {
	return &Breach{
		ZoneID:      z.ID,
		ZoneName:    z.Name,
		Severity:    z.Severity,
		Description: z.Description,
	}
}

// BreachEvent is what the monitor hands to an alert sink. EventID is unique
// per zone entry so sinks can drop duplicates.
type BreachEvent struct {
	EventID    string        `json:"eventId"`
	Breach     Breach        `json:"breach"`
	Location   spatial.Point `json:"location"`
	DetectedAt time.Time     `json:"detectedAt"`
}
