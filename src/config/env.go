// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// envOverrides mirrors the settings that make sense to override per
// deployment without editing the file. Pointer fields distinguish "unset"
// from an explicit zero value.
type envOverrides struct {
	Listen         *string `env:"GODCHECKER_LISTEN"`
	MetricsEnabled *bool   `env:"GODCHECKER_METRICS_ENABLED"`
	MetricsToken   *string `env:"GODCHECKER_METRICS_TOKEN"`

	CacheVersion *string `env:"GODCHECKER_CACHE_VERSION"`

	ScrapeSchedule *string `env:"GODCHECKER_SCRAPE_SCHEDULE"`
	UserAgent      *string `env:"GODCHECKER_USER_AGENT"`

	ManualDir  *string `env:"GODCHECKER_MANUAL_DIR"`
	ExportPath *string `env:"GODCHECKER_EXPORT_PATH"`

	DBDriver *string `env:"GODCHECKER_DB_DRIVER"`
	DBSource *string `env:"GODCHECKER_DB_SOURCE"`

	LogLevel  *string `env:"GODCHECKER_LOG_LEVEL"`
	LogFormat *string `env:"GODCHECKER_LOG_FORMAT"`
}

func applyEnv(cfg *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return errors.Wrap(err, "parse environment")
	}

	setString(&cfg.Server.Listen, ov.Listen)
	if ov.MetricsEnabled != nil {
		cfg.Server.Metrics.Enabled = *ov.MetricsEnabled
	}
	setString(&cfg.Server.Metrics.Token, ov.MetricsToken)
	setString(&cfg.Cache.Version, ov.CacheVersion)
	setString(&cfg.Scrape.Schedule, ov.ScrapeSchedule)
	setString(&cfg.Scrape.UserAgent, ov.UserAgent)
	setString(&cfg.Feed.ManualDir, ov.ManualDir)
	setString(&cfg.Feed.ExportPath, ov.ExportPath)
	setString(&cfg.Database.Driver, ov.DBDriver)
	setString(&cfg.Database.Source, ov.DBSource)
	setString(&cfg.Log.Level, ov.LogLevel)
	setString(&cfg.Log.Format, ov.LogFormat)

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
