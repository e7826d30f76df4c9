package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jengzang/campusguard-backend-go/internal/database"
	"github.com/jengzang/campusguard-backend-go/internal/logging"
	"github.com/jengzang/campusguard-backend-go/internal/observability"
)

// Heatmap store backends
const (
	HeatmapStoreMemory = "memory"
	HeatmapStoreSQL    = "sql"
	HeatmapStoreRedis  = "redis"
)

// Config 应用配置
type Config struct {
	Port         string
	DB           database.Config
	JWTSecret    string // empty locks operator routes
	AuthDisabled bool   // lets operator routes through without a token

	ZonesGeoJSON    string // seed file imported at startup
	CatalogCacheTTL time.Duration

	MonitorInterval    time.Duration
	MonitorTickTimeout time.Duration
	MonitorAutostart   bool
	GeofencePolicy     string
	LocationMaxAge     time.Duration

	WalkingSpeedKmh float64

	HeatmapStore     string
	HeatmapPrecision int
	HeatmapMinCount  int
	HeatmapTimezone  string

	Redis RedisConfig

	RateLimit int // requests per minute per IP on ping ingestion

	Tracing observability.TracingConfig
	Log     logging.Config
}

// RedisConfig mirrors the REDIS_* variables
type RedisConfig struct {
	Host string
	Port string
	Pass string
	DB   int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// Load reads .env if present, then the environment
func Load() *Config {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv builds the config from the environment only
func FromEnv() *Config {
	port := getEnv("PORT", ":8080")
	if !strings.Contains(port, ":") {
		port = ":" + port
	}

	return &Config{
		Port: port,
		DB: database.Config{
			Driver: getEnv("DB_DRIVER", database.DriverSQLite),
			Path:   getEnv("DB_PATH", "./data/campus.db"),
			URL:    os.Getenv("DATABASE_URL"),
		},
		JWTSecret:    os.Getenv("JWT_SECRET"),
		AuthDisabled: getBool("AUTH_DISABLED", false),

		ZonesGeoJSON:    os.Getenv("ZONES_GEOJSON"),
		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", 30*time.Second),

		MonitorInterval:    getDuration("MONITOR_INTERVAL", 5*time.Second),
		MonitorTickTimeout: getDuration("MONITOR_TICK_TIMEOUT", 10*time.Second),
		MonitorAutostart:   getBool("MONITOR_AUTOSTART", false),
		GeofencePolicy:     getEnv("GEOFENCE_POLICY", "first"),
		LocationMaxAge:     getDuration("LOCATION_MAX_AGE", 2*time.Minute),

		WalkingSpeedKmh: getFloat("WALKING_SPEED_KMH", 5),

		HeatmapStore:     strings.ToLower(getEnv("HEATMAP_STORE", HeatmapStoreMemory)),
		HeatmapPrecision: getInt("HEATMAP_PRECISION", 7),
		HeatmapMinCount:  getInt("HEATMAP_MIN_COUNT", 3),
		HeatmapTimezone:  getEnv("HEATMAP_TIMEZONE", "Local"),

		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "127.0.0.1"),
			Port: getEnv("REDIS_PORT", "6379"),
			Pass: os.Getenv("REDIS_PASS"),
			DB:   getInt("REDIS_DB", 0),
		},

		RateLimit: getInt("RATE_LIMIT", 120),

		Tracing: observability.TracingConfigFromEnv(),
		Log: logging.Config{
			Level:     getEnv("LOG_LEVEL", "info"),
			Format:    getEnv("LOG_FORMAT", "text"),
			AddSource: getBool("LOG_ADD_SOURCE", false),
		},
	}
}

// Validate rejects settings that cannot work together
func (c *Config) Validate() error {
	if c.MonitorAutostart && c.JWTSecret == "" && !c.AuthDisabled {
		return errors.New("MONITOR_AUTOSTART needs JWT_SECRET so devices can report locations (or AUTH_DISABLED=true)")
	}
	return nil
}

// HeatmapLocation resolves HEATMAP_TIMEZONE, falling back to the process zone
func (c *Config) HeatmapLocation() *time.Location {
	if c.HeatmapTimezone == "" || c.HeatmapTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.HeatmapTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// getDuration accepts Go durations ("5s") or bare milliseconds ("5000")
func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
