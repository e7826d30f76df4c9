package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/campusguard-backend-go/internal/directions"
	"github.com/jengzang/campusguard-backend-go/internal/heatmap"
	"github.com/jengzang/campusguard-backend-go/internal/service"
	"github.com/jengzang/campusguard-backend-go/internal/spatial"
	"github.com/jengzang/campusguard-backend-go/pkg/response"
)

// writeError maps service errors onto the response envelope
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, spatial.ErrInvalidCoordinate),
		errors.Is(err, heatmap.ErrPingExpired),
		errors.Is(err, heatmap.ErrUnknownWindow),
		errors.Is(err, directions.ErrTooManySteps):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUnavailable),
		errors.Is(err, heatmap.ErrStoreUnavailable):
		response.ServiceUnavailable(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}
