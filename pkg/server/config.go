package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// TOMLConfig represents the structure of the server config file
type TOMLConfig struct {
	Server  ServerSection  `toml:"server"`
	Limits  LimitsSection  `toml:"limits"`
	Storage StorageSection `toml:"storage"`
	Stats   StatsSection   `toml:"stats"`
}

type ServerSection struct {
	Address     string `toml:"address"`
	Port        int    `toml:"port"`
	MetricsPort int    `toml:"metrics_port"`
}

type LimitsSection struct {
	MaxConnections int `toml:"max_connections"`
}

type StorageSection struct {
	RootDir      string `toml:"root_dir"`
	DatabasePath string `toml:"database_path"`
}

type StatsSection struct {
	BroadcastIntervalMs int `toml:"broadcast_interval_ms"`
}

// ServerConfig holds the resolved server configuration
type ServerConfig struct {
	Address           string
	Port              int
	MetricsPort       int
	MaxConnections    int
	RootDir           string
	DatabasePath      string
	BroadcastInterval time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Address:           "127.0.0.1",
		Port:              8089,
		MetricsPort:       9089,
		MaxConnections:    10,
		RootDir:           "~/.fileserv/files",
		DatabasePath:      "~/.fileserv/stats.db",
		BroadcastInterval: 1 * time.Second,
	}
}

// DefaultTOMLConfig returns the default TOML configuration
func DefaultTOMLConfig() TOMLConfig {
	defaults := DefaultConfig()
	return TOMLConfig{
		Server: ServerSection{
			Address:     defaults.Address,
			Port:        defaults.Port,
			MetricsPort: defaults.MetricsPort,
		},
		Limits: LimitsSection{
			MaxConnections: defaults.MaxConnections,
		},
		Storage: StorageSection{
			RootDir:      defaults.RootDir,
			DatabasePath: defaults.DatabasePath,
		},
		Stats: StatsSection{
			BroadcastIntervalMs: int(defaults.BroadcastInterval / time.Millisecond),
		},
	}
}

// LoadConfig loads configuration from a TOML file, creates default if not found
func LoadConfig(path string) (TOMLConfig, error) {
	path, err := expandHome(path)
	if err != nil {
		return TOMLConfig{}, err
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, create default config
		config := DefaultTOMLConfig()
		if err := writeDefaultConfig(path, config); err != nil {
			// If we can't write, just return defaults without error
			// (might be a permissions issue, but we can still run)
			return config, nil
		}
		return config, nil
	}

	// Load from file
	var config TOMLConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return TOMLConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// writeDefaultConfig writes the default config to a file
func writeDefaultConfig(path string, config TOMLConfig) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	header := `# fileserv Server Configuration
# This file was auto-generated with default values
# Edit as needed and restart the server for changes to take effect

`
	if _, err := f.WriteString(header); err != nil {
		return err
	}

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ToServerConfig converts TOMLConfig to ServerConfig
func (c *TOMLConfig) ToServerConfig() (ServerConfig, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(c.Server.Address) != "" {
		cfg.Address = c.Server.Address
	}

	if c.Server.Port != 0 {
		cfg.Port = c.Server.Port
	}

	if c.Server.MetricsPort != 0 {
		cfg.MetricsPort = c.Server.MetricsPort
	}

	if c.Limits.MaxConnections != 0 {
		cfg.MaxConnections = c.Limits.MaxConnections
	}

	if strings.TrimSpace(c.Storage.RootDir) != "" {
		cfg.RootDir = c.Storage.RootDir
	}

	// An empty database_path disables persistence, so the file value is taken
	// as-is instead of falling back to the default.
	cfg.DatabasePath = c.Storage.DatabasePath

	if c.Stats.BroadcastIntervalMs != 0 {
		cfg.BroadcastInterval = time.Duration(c.Stats.BroadcastIntervalMs) * time.Millisecond
	}

	var err error
	if cfg.RootDir, err = expandHome(cfg.RootDir); err != nil {
		return ServerConfig{}, err
	}
	if cfg.DatabasePath != "" {
		if cfg.DatabasePath, err = expandHome(cfg.DatabasePath); err != nil {
			return ServerConfig{}, err
		}
	}

	return cfg, nil
}

// expandHome expands a leading ~/ to the user's home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}
