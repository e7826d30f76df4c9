package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/service"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
	"github.com/jengzang/campusguard-backend-go/pkg/response"
)

// HeatmapHandler handles HTTP requests for the crowd heatmap
type HeatmapHandler struct {
	service *service.HeatmapService
}

// NewHeatmapHandler creates a new heatmap handler
func NewHeatmapHandler(service *service.HeatmapService) *HeatmapHandler {
	return &HeatmapHandler{service: service}
}

// RecordPing handles POST /api/v1/heatmap/pings
func (h *HeatmapHandler) RecordPing(c *gin.Context) {
	var req models.PingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "lat and lon are required")
		return
	}

	if err := h.service.RecordPing(c.Request.Context(), spatial.Point{Lat: *req.Lat, Lon: *req.Lon}, req.Timestamp); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"accepted": true})
}

// GetCells handles GET /api/v1/heatmap/cells
func (h *HeatmapHandler) GetCells(c *gin.Context) {
	var q models.HeatmapQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.service.Cells(c.Request.Context(), q.Window)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, res)
}
