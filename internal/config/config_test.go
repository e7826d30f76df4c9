package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "MONITOR_INTERVAL", "HEATMAP_STORE",
		"HEATMAP_PRECISION", "HEATMAP_MIN_COUNT", "REDIS_HOST", "REDIS_PORT", "WALKING_SPEED_KMH"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.Port != ":8080" {
		t.Fatalf("Port = %q, want :8080", cfg.Port)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("DB.Driver = %q, want sqlite", cfg.DB.Driver)
	}
	if cfg.MonitorInterval != 5*time.Second {
		t.Fatalf("MonitorInterval = %v, want 5s", cfg.MonitorInterval)
	}
	if cfg.HeatmapStore != HeatmapStoreMemory {
		t.Fatalf("HeatmapStore = %q, want memory", cfg.HeatmapStore)
	}
	if cfg.HeatmapPrecision != 7 || cfg.HeatmapMinCount != 3 {
		t.Fatalf("heatmap precision/floor = %d/%d, want 7/3", cfg.HeatmapPrecision, cfg.HeatmapMinCount)
	}
	if cfg.Redis.Addr() != "127.0.0.1:6379" {
		t.Fatalf("Redis.Addr() = %q", cfg.Redis.Addr())
	}
	if cfg.WalkingSpeedKmh != 5 {
		t.Fatalf("WalkingSpeedKmh = %v, want 5", cfg.WalkingSpeedKmh)
	}
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MONITOR_INTERVAL", "5000")
	t.Setenv("MONITOR_TICK_TIMEOUT", "750ms")
	t.Setenv("MONITOR_AUTOSTART", "true")
	t.Setenv("HEATMAP_STORE", "Redis")
	t.Setenv("HEATMAP_MIN_COUNT", "10")
	t.Setenv("WALKING_SPEED_KMH", "3.5")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://campus@localhost/campus")

	cfg := FromEnv()
	if cfg.Port != ":9090" {
		t.Fatalf("Port = %q, want :9090", cfg.Port)
	}
	if cfg.MonitorInterval != 5*time.Second {
		t.Fatalf("MonitorInterval = %v, want 5s from bare millis", cfg.MonitorInterval)
	}
	if cfg.MonitorTickTimeout != 750*time.Millisecond {
		t.Fatalf("MonitorTickTimeout = %v, want 750ms", cfg.MonitorTickTimeout)
	}
	if !cfg.MonitorAutostart {
		t.Fatalf("MonitorAutostart = false, want true")
	}
	if cfg.HeatmapStore != HeatmapStoreRedis {
		t.Fatalf("HeatmapStore = %q, want redis", cfg.HeatmapStore)
	}
	if cfg.HeatmapMinCount != 10 {
		t.Fatalf("HeatmapMinCount = %d, want 10", cfg.HeatmapMinCount)
	}
	if cfg.WalkingSpeedKmh != 3.5 {
		t.Fatalf("WalkingSpeedKmh = %v, want 3.5", cfg.WalkingSpeedKmh)
	}
	if cfg.Redis.DB != 2 {
		t.Fatalf("Redis.DB = %d, want 2", cfg.Redis.DB)
	}
	if cfg.DB.Driver != "postgres" || cfg.DB.URL == "" {
		t.Fatalf("DB = %+v", cfg.DB)
	}
}

func TestBadValuesFallBack(t *testing.T) {
	t.Setenv("MONITOR_INTERVAL", "soon")
	t.Setenv("HEATMAP_PRECISION", "seven")
	t.Setenv("MONITOR_AUTOSTART", "maybe")

	cfg := FromEnv()
	if cfg.MonitorInterval != 5*time.Second {
		t.Fatalf("MonitorInterval = %v, want default", cfg.MonitorInterval)
	}
	if cfg.HeatmapPrecision != 7 {
		t.Fatalf("HeatmapPrecision = %d, want default", cfg.HeatmapPrecision)
	}
	if cfg.MonitorAutostart {
		t.Fatalf("MonitorAutostart = true, want default false")
	}
}

func TestHeatmapLocation(t *testing.T) {
	cfg := &Config{HeatmapTimezone: "UTC"}
	if cfg.HeatmapLocation() != time.UTC {
		t.Fatalf("HeatmapLocation(UTC) = %v", cfg.HeatmapLocation())
	}
	cfg.HeatmapTimezone = "Not/AZone"
	if cfg.HeatmapLocation() != time.Local {
		t.Fatalf("unknown zone should fall back to Local")
	}
}

func TestValidateAutostartNeedsAuth(t *testing.T) {
	cases := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{}, false},
		{Config{MonitorAutostart: true}, true},
		{Config{MonitorAutostart: true, JWTSecret: "s3cret"}, false},
		{Config{MonitorAutostart: true, AuthDisabled: true}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("Validate(%+v) err = %v, wantErr %v", tc.cfg, err, tc.wantErr)
		}
	}
}

func TestAuthDisabledFlag(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "")
	if FromEnv().AuthDisabled {
		t.Fatalf("AuthDisabled = true, want default false")
	}
	t.Setenv("AUTH_DISABLED", "true")
	if !FromEnv().AuthDisabled {
		t.Fatalf("AuthDisabled = false with AUTH_DISABLED=true")
	}
}
