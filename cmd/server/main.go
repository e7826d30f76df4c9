package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/jengzang/campusguard-backend-go/internal/api"
	"github.com/jengzang/campusguard-backend-go/internal/config"
	"github.com/jengzang/campusguard-backend-go/internal/database"
	"github.com/jengzang/campusguard-backend-go/internal/directions"
	"github.com/jengzang/campusguard-backend-go/internal/geofence"
	"github.com/jengzang/campusguard-backend-go/internal/handler"
	"github.com/jengzang/campusguard-backend-go/internal/heatmap"
	"github.com/jengzang/campusguard-backend-go/internal/location"
	"github.com/jengzang/campusguard-backend-go/internal/logging"
	"github.com/jengzang/campusguard-backend-go/internal/middleware"
	"github.com/jengzang/campusguard-backend-go/internal/monitor"
	"github.com/jengzang/campusguard-backend-go/internal/observability"
	"github.com/jengzang/campusguard-backend-go/internal/repository"
	"github.com/jengzang/campusguard-backend-go/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()
	log := logging.New(cfg.Log)
	slog.SetDefault(log)
	if err := cfg.Validate(); err != nil {
		log.Error("config_invalid", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		log.Error("tracing_init_failed", "err", err)
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("metrics_init_failed", "err", err)
		os.Exit(1)
	}

	// 初始化数据库
	db, err := database.Open(cfg.DB, log)
	if err != nil {
		log.Error("database_open_failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, log); err != nil {
		log.Error("database_migrate_failed", "err", err)
		os.Exit(1)
	}

	catalogRepo := repository.NewCatalogRepository(db)
	var reload service.ReloadFunc
	if cfg.ZonesGeoJSON != "" {
		reload = func(ctx context.Context) (int, int, error) {
			return repository.ImportGeoJSONFile(ctx, catalogRepo, cfg.ZonesGeoJSON)
		}
		nz, nf, err := reload(ctx)
		if err != nil {
			log.Error("catalog_seed_failed", "path", cfg.ZonesGeoJSON, "err", err)
			os.Exit(1)
		}
		log.Info("catalog_seeded", "path", cfg.ZonesGeoJSON, "zones", nz, "facilities", nf)
	}

	var catalog geofence.Catalog = catalogRepo
	if cfg.CatalogCacheTTL > 0 {
		catalog = geofence.NewCachedCatalog(catalogRepo, cfg.CatalogCacheTTL)
	}

	policy, err := geofence.ParsePolicy(cfg.GeofencePolicy)
	if err != nil {
		log.Warn("geofence_policy_invalid", "value", cfg.GeofencePolicy, "err", err)
	}

	// monitor
	tracker := location.NewTracker(nil, cfg.LocationMaxAge)
	alerts := monitor.NewAlertLog(0)
	mon := monitor.New(tracker, catalog, monitor.MultiSink{alerts, monitor.LogSink{Log: log}},
		monitor.WithPolicy(policy),
		monitor.WithTickTimeout(cfg.MonitorTickTimeout),
		monitor.WithLogger(log),
		monitor.WithMetrics(metrics),
	)
	defer mon.Stop()
	if cfg.MonitorAutostart {
		if _, err := mon.Start(cfg.MonitorInterval); err != nil {
			log.Error("monitor_autostart_failed", "err", err)
		}
	}

	// heatmap
	store, closeStore := heatmapStore(ctx, cfg, db, log)
	defer closeStore()
	agg := heatmap.New(store, heatmap.Config{
		Precision: cfg.HeatmapPrecision,
		MinCount:  cfg.HeatmapMinCount,
		Location:  cfg.HeatmapLocation(),
	}, heatmap.WithLogger(log), heatmap.WithMetrics(metrics))
	if cfg.HeatmapMinCount < heatmap.MinPrivacyFloor {
		log.Warn("heatmap_floor_raised", "configured", cfg.HeatmapMinCount, "effective", agg.MinCount())
	}

	h := api.Handlers{
		Geofence:  handler.NewGeofenceHandler(service.NewGeofenceService(catalog, policy, reload, log)),
		Emergency: handler.NewEmergencyHandler(service.NewEmergencyService(catalog, directions.NewEstimator(cfg.WalkingSpeedKmh))),
		Monitor:   handler.NewMonitorHandler(service.NewMonitorService(mon, tracker, alerts, cfg.MonitorInterval)),
		Heatmap:   handler.NewHeatmapHandler(service.NewHeatmapService(agg)),
	}

	// 初始化路由
	router := api.SetupRouter(h, api.Options{
		JWTSecret:    cfg.JWTSecret,
		AuthDisabled: cfg.AuthDisabled,
		PingLimiter:  middleware.NewRateLimiter(cfg.RateLimit, time.Minute, nil),
		Metrics:      metrics,
		Gatherer:     prometheus.DefaultGatherer,
		Log:          log,
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server_starting", "addr", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_exited", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server_shutdown_failed", "err", err)
	}
}

// heatmapStore picks the ping store named by HEATMAP_STORE
func heatmapStore(ctx context.Context, cfg *config.Config, db *database.DB, log *slog.Logger) (heatmap.Store, func()) {
	switch cfg.HeatmapStore {
	case config.HeatmapStoreSQL:
		log.Info("heatmap_store", "backend", "sql", "driver", db.Driver)
		return repository.NewPingRepository(db), func() {}

	case config.HeatmapStoreRedis:
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Pass,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx).Err(); err != nil {
			// queries report degraded until redis comes back
			log.Warn("redis_unreachable", "addr", cfg.Redis.Addr(), "err", err)
		}
		log.Info("heatmap_store", "backend", "redis", "addr", cfg.Redis.Addr(), "db", cfg.Redis.DB)
		return heatmap.NewRedisStore(rc, ""), func() { _ = rc.Close() }

	default:
		if cfg.HeatmapStore != config.HeatmapStoreMemory {
			log.Warn("heatmap_store_unknown", "value", cfg.HeatmapStore, "using", config.HeatmapStoreMemory)
		}
		return heatmap.NewMemoryStore(), func() {}
	}
}
