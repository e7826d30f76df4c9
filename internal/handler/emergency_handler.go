package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/service"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
	"github.com/jengzang/campusguard-backend-go/pkg/response"
)

// EmergencyHandler handles HTTP requests for facilities and directions
type EmergencyHandler struct {
	service *service.EmergencyService
}

// NewEmergencyHandler creates a new emergency handler
func NewEmergencyHandler(service *service.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{service: service}
}

// GetNearest handles GET /api/v1/emergency/nearest
func (h *EmergencyHandler) GetNearest(c *gin.Context) {
	var q models.NearestFacilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.service.Nearest(c.Request.Context(),
		spatial.Point{Lat: *q.Lat, Lon: *q.Lon}, models.FacilityType(q.Type), q.Steps)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, res)
}

// GetDirections handles GET /api/v1/directions
func (h *EmergencyHandler) GetDirections(c *gin.Context) {
	var q models.DirectionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	from := spatial.Point{Lat: *q.FromLat, Lon: *q.FromLon}
	to := spatial.Point{Lat: *q.ToLat, Lon: *q.ToLon}
	est, route, err := h.service.Directions(from, to, q.Steps)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"directions": est,
		"route":      route,
	})
}
