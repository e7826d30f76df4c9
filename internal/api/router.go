package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/campusguard-backend-go/internal/handler"
	"github.com/jengzang/campusguard-backend-go/internal/logging"
	"github.com/jengzang/campusguard-backend-go/internal/middleware"
	"github.com/jengzang/campusguard-backend-go/internal/observability"
)

// Handlers groups the HTTP handlers the router mounts
type Handlers struct {
	Geofence  *handler.GeofenceHandler
	Emergency *handler.EmergencyHandler
	Monitor   *handler.MonitorHandler
	Heatmap   *handler.HeatmapHandler
}

// Options configures cross-cutting middleware
type Options struct {
	JWTSecret    string
	AuthDisabled bool
	PingLimiter  *middleware.RateLimiter
	Metrics      *observability.Metrics
	Gatherer     prometheus.Gatherer // served on /metrics; nil hides the endpoint
	Log          *slog.Logger
}

// SetupRouter 设置路由
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(opts.Log))
	r.Use(opts.Metrics.GinMiddleware())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CampusGuard API is running",
		})
	})

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	operator := middleware.Auth(opts.JWTSecret, opts.Log)
	if opts.AuthDisabled {
		operator = middleware.NoAuth(opts.Log)
	}

	api := r.Group("/api/v1")
	{
		zones := api.Group("/zones")
		{
			zones.GET("", h.Geofence.GetZones)
			zones.GET("/geojson", h.Geofence.GetZonesGeoJSON)
			zones.POST("/reload", operator, h.Geofence.Reload)
		}
		api.GET("/facilities", h.Geofence.GetFacilities)
		api.POST("/geofence/evaluate", h.Geofence.Evaluate)

		api.GET("/emergency/nearest", h.Emergency.GetNearest)
		api.GET("/directions", h.Emergency.GetDirections)

		api.POST("/location", operator, h.Monitor.ReportLocation)
		mon := api.Group("/monitor")
		{
			mon.GET("", h.Monitor.GetStatus)
			mon.GET("/alerts", h.Monitor.GetAlerts)
			mon.POST("/start", operator, h.Monitor.Start)
			mon.POST("/stop", operator, h.Monitor.Stop)
		}

		heat := api.Group("/heatmap")
		{
			heat.POST("/pings", middleware.RateLimit(opts.PingLimiter), h.Heatmap.RecordPing)
			heat.GET("/cells", h.Heatmap.GetCells)
		}
	}

	return r
}
