package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/campusguard-backend-go/internal/models"
	"github.com/jengzang/campusguard-backend-go/internal/service"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
	"github.com/jengzang/campusguard-backend-go/pkg/response"
)

// MonitorHandler handles HTTP requests for the background monitor
type MonitorHandler struct {
	service *service.MonitorService
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(service *service.MonitorService) *MonitorHandler {
	return &MonitorHandler{service: service}
}

// GetStatus handles GET /api/v1/monitor
func (h *MonitorHandler) GetStatus(c *gin.Context) {
	response.Success(c, h.service.Status())
}

// Start handles POST /api/v1/monitor/start. The body is optional.
func (h *MonitorHandler) Start(c *gin.Context) {
	var req models.MonitorStartRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if req.IntervalMs < 0 {
		response.BadRequest(c, "intervalMs must be positive")
		return
	}

	view, err := h.service.Start(req.IntervalMs)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, view)
}

// Stop handles POST /api/v1/monitor/stop
func (h *MonitorHandler) Stop(c *gin.Context) {
	response.Success(c, h.service.Stop())
}

// GetAlerts handles GET /api/v1/monitor/alerts
func (h *MonitorHandler) GetAlerts(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "Invalid limit")
			return
		}
		limit = n
	}

	alerts := h.service.Alerts(limit)
	response.Success(c, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// ReportLocation handles POST /api/v1/location
func (h *MonitorHandler) ReportLocation(c *gin.Context) {
	var req models.PointQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "lat and lon are required")
		return
	}

	if err := h.service.ReportLocation(spatial.Point{Lat: *req.Lat, Lon: *req.Lon}); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, h.service.Status())
}
