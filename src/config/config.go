// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package config loads the server configuration: built-in defaults,
// overridden by an optional YAML file, overridden by environment variables.
package config

import (
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Cache    Cache    `yaml:"cache"`
	Feed     Feed     `yaml:"feed"`
	Scrape   Scrape   `yaml:"scrape"`
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
}

// Server configures the HTTP listener.
type Server struct {
	// Listen address, host:port.
	Listen string `yaml:"listen"`
	// Title shown by the display layer and the status TUI.
	Title string `yaml:"title"`

	Timeouts struct {
		// Read timeout in seconds.
		Read int `yaml:"read"`
		// Write timeout in seconds.
		Write int `yaml:"write"`
		// Idle timeout in seconds.
		Idle int `yaml:"idle"`
	} `yaml:"timeouts"`

	Metrics struct {
		// Enable the Prometheus endpoint.
		Enabled bool `yaml:"enabled"`
		// Endpoint path.
		Endpoint string `yaml:"endpoint"`
		// Optional bearer token.
		Token string `yaml:"token"`
	} `yaml:"metrics"`
}

// Cache configures the shell cache.
type Cache struct {
	// Version names the store; bumping it invalidates all prior entries.
	Version string `yaml:"version"`
	// Shell is the fixed asset manifest pre-populated at install.
	Shell []string `yaml:"shell"`
	// RetryInstall is the schedule for retrying a failed install.
	RetryInstall string `yaml:"retry_install"`
}

// Feed configures the published document.
type Feed struct {
	// RetentionDays drops items older than this many days.
	RetentionDays int `yaml:"retention_days"`
	// ManualDir holds hand-maintained override files (*.json).
	ManualDir string `yaml:"manual_dir"`
	// ExportPath is where the scrape/export commands write the document.
	ExportPath string `yaml:"export_path"`
}

// Scrape configures the collector.
type Scrape struct {
	// Schedule is a cron expression or @every/@hourly shorthand.
	Schedule string `yaml:"schedule"`
	// Timeout in seconds for one page fetch.
	Timeout int `yaml:"timeout"`
	// UserAgent sent to source sites.
	UserAgent string `yaml:"user_agent"`
	// MaxRetries per page on transient failures.
	MaxRetries int `yaml:"max_retries"`

	// Per-source URL overrides; empty lists select the defaults.
	Sources struct {
		Kunaicho []string `yaml:"kunaicho"`
		Kantei   []string `yaml:"kantei"`
		MOFA     []string `yaml:"mofa"`
		Traffic  []string `yaml:"traffic"`
	} `yaml:"sources"`
}

// Database selects the feed store backend.
type Database struct {
	// Driver: sqlite, postgres or mysql.
	Driver string `yaml:"driver"`
	// Source is the driver-specific connection string.
	Source string `yaml:"source"`
	// MaxOpenConns caps the pool.
	MaxOpenConns int `yaml:"max_open_conns"`
	// MaxIdleConns caps idle connections.
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// Log configures logging output.
type Log struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format: text or json.
	Format string `yaml:"format"`
}

// DefaultShell is the installable app shell: every path must resolve at
// install time.
var DefaultShell = []string{
	"/",
	"/index.html",
	"/manifest.webmanifest",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config

	cfg.Server.Listen = ":8080"
	cfg.Server.Title = "God Checker"
	cfg.Server.Timeouts.Read = 15
	cfg.Server.Timeouts.Write = 15
	cfg.Server.Timeouts.Idle = 60
	cfg.Server.Metrics.Endpoint = "/metrics"

	cfg.Cache.Version = "godchecker-static-v1"
	cfg.Cache.Shell = append([]string(nil), DefaultShell...)
	cfg.Cache.RetryInstall = "@every 1m"

	cfg.Feed.RetentionDays = 60
	cfg.Feed.ManualDir = "data/manual"
	cfg.Feed.ExportPath = "docs/restrictions.json"

	cfg.Scrape.Schedule = "@hourly"
	cfg.Scrape.Timeout = 25
	cfg.Scrape.MaxRetries = 3

	cfg.Database.Driver = "sqlite"
	cfg.Database.Source = "godchecker.db"
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 2

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"

	return cfg
}

// Retention returns the feed retention as a duration.
func (c Config) Retention() time.Duration {
	days := c.Feed.RetentionDays
	if days <= 0 {
		days = 60
	}
	return time.Duration(days) * 24 * time.Hour
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadYAML(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
