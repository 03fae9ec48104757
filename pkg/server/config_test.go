package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultTOMLConfigMatchesDefaults(t *testing.T) {
	cfg := DefaultTOMLConfig()
	defaults := DefaultConfig()

	if cfg.Server.Port != defaults.Port {
		t.Fatalf("expected default port %d, got %d", defaults.Port, cfg.Server.Port)
	}
	if cfg.Limits.MaxConnections != defaults.MaxConnections {
		t.Fatalf("expected default max connections %d, got %d", defaults.MaxConnections, cfg.Limits.MaxConnections)
	}
	if cfg.Stats.BroadcastIntervalMs != int(defaults.BroadcastInterval/time.Millisecond) {
		t.Fatalf("expected default broadcast interval %v, got %dms", defaults.BroadcastInterval, cfg.Stats.BroadcastIntervalMs)
	}
}

func TestToServerConfigMapsAllSections(t *testing.T) {
	cfg := DefaultTOMLConfig()
	cfg.Server.Address = "0.0.0.0"
	cfg.Server.Port = 9000
	cfg.Server.MetricsPort = 9100
	cfg.Limits.MaxConnections = 25
	cfg.Storage.RootDir = "/srv/files"
	cfg.Storage.DatabasePath = "/srv/stats.db"
	cfg.Stats.BroadcastIntervalMs = 250

	serverCfg, err := cfg.ToServerConfig()
	if err != nil {
		t.Fatalf("ToServerConfig failed: %v", err)
	}

	if serverCfg.Address != "0.0.0.0" {
		t.Fatalf("expected address 0.0.0.0, got %s", serverCfg.Address)
	}
	if serverCfg.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", serverCfg.Port)
	}
	if serverCfg.MetricsPort != 9100 {
		t.Fatalf("expected metrics port 9100, got %d", serverCfg.MetricsPort)
	}
	if serverCfg.MaxConnections != 25 {
		t.Fatalf("expected max connections 25, got %d", serverCfg.MaxConnections)
	}
	if serverCfg.RootDir != "/srv/files" {
		t.Fatalf("expected root dir /srv/files, got %s", serverCfg.RootDir)
	}
	if serverCfg.DatabasePath != "/srv/stats.db" {
		t.Fatalf("expected database path /srv/stats.db, got %s", serverCfg.DatabasePath)
	}
	if serverCfg.BroadcastInterval != 250*time.Millisecond {
		t.Fatalf("expected broadcast interval 250ms, got %v", serverCfg.BroadcastInterval)
	}
}

func TestToServerConfigFallsBackToDefaults(t *testing.T) {
	var cfg TOMLConfig

	serverCfg, err := cfg.ToServerConfig()
	if err != nil {
		t.Fatalf("ToServerConfig failed: %v", err)
	}

	defaults := DefaultConfig()

	if serverCfg.Address != defaults.Address {
		t.Fatalf("expected fallback address %s, got %s", defaults.Address, serverCfg.Address)
	}
	if serverCfg.Port != defaults.Port {
		t.Fatalf("expected fallback port %d, got %d", defaults.Port, serverCfg.Port)
	}
	if serverCfg.MaxConnections != defaults.MaxConnections {
		t.Fatalf("expected fallback max connections %d, got %d", defaults.MaxConnections, serverCfg.MaxConnections)
	}
	if serverCfg.BroadcastInterval != defaults.BroadcastInterval {
		t.Fatalf("expected fallback broadcast interval %v, got %v", defaults.BroadcastInterval, serverCfg.BroadcastInterval)
	}

	// Empty database_path means persistence disabled, not the default path.
	if serverCfg.DatabasePath != "" {
		t.Fatalf("expected empty database path, got %s", serverCfg.DatabasePath)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
address = "127.0.0.1"
port = 7777

[limits]
max_connections = 3

[storage]
root_dir = "/srv/a"

[stats]
broadcast_interval_ms = 100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Fatalf("expected port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Limits.MaxConnections != 3 {
		t.Fatalf("expected max connections 3, got %d", cfg.Limits.MaxConnections)
	}
	if cfg.Stats.BroadcastIntervalMs != 100 {
		t.Fatalf("expected broadcast interval 100ms, got %d", cfg.Stats.BroadcastIntervalMs)
	}
}

func TestLoadConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != DefaultConfig().Port {
		t.Fatalf("expected default port, got %d", cfg.Server.Port)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config file to be written: %v", err)
	}
}
