package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/service"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
	"github.com/jengzang/campusguard-backend-go/pkg/response"
)

// GeofenceHandler handles HTTP requests for zones and point evaluation
type GeofenceHandler struct {
	service *service.GeofenceService
}

// NewGeofenceHandler creates a new geofence handler
func NewGeofenceHandler(service *service.GeofenceService) *GeofenceHandler {
	return &GeofenceHandler{service: service}
}

// GetZones handles GET /api/v1/zones
func (h *GeofenceHandler) GetZones(c *gin.Context) {
	zones, err := h.service.Zones(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"zones": zones,
		"count": len(zones),
	})
}

// GetZonesGeoJSON handles GET /api/v1/zones/geojson
func (h *GeofenceHandler) GetZonesGeoJSON(c *gin.Context) {
	fc, err := h.service.ExportGeoJSON(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, fc)
}

// GetFacilities handles GET /api/v1/facilities
func (h *GeofenceHandler) GetFacilities(c *gin.Context) {
	facilities, err := h.service.Facilities(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"facilities": facilities,
		"count":      len(facilities),
	})
}

// Evaluate handles POST /api/v1/geofence/evaluate
func (h *GeofenceHandler) Evaluate(c *gin.Context) {
	var req models.PointQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "lat and lon are required")
		return
	}

	breach, err := h.service.Evaluate(c.Request.Context(), spatial.Point{Lat: *req.Lat, Lon: *req.Lon})
	if err != nil {
		writeError(c, err)
		return
	}

	// breach is null when the point is outside every zone
	response.Success(c, gin.H{
		"inside": breach != nil,
		"breach": breach,
	})
}

// Reload handles POST /api/v1/zones/reload
func (h *GeofenceHandler) Reload(c *gin.Context) {
	zones, facilities, err := h.service.Reload(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"zones":      zones,
		"facilities": facilities,
	})
}
