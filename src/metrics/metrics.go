// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package metrics exposes Prometheus metrics. All metrics carry the
// godchecker_ prefix and follow Prometheus naming conventions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the metrics endpoint configuration.
type Config struct {
	// Enabled controls whether the endpoint is registered.
	Enabled bool
	// Endpoint path (default: /metrics).
	Endpoint string
	// Token for optional bearer token authentication.
	Token string
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Endpoint: "/metrics",
	}
}

var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "godchecker_app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)

	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "godchecker_app_start_timestamp",
			Help: "Application start timestamp",
		},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godchecker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "godchecker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Shell cache metrics
	ShellHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "godchecker_shell_cache_hits_total",
			Help: "Shell requests answered from the versioned cache",
		},
	)

	ShellMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "godchecker_shell_cache_misses_total",
			Help: "Shell requests that fell through to the origin",
		},
	)

	ShellBypass = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "godchecker_shell_cache_bypass_total",
			Help: "Data-file requests that bypassed the cache entirely",
		},
	)

	ShellInstalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godchecker_shell_cache_installs_total",
			Help: "Shell cache install attempts by outcome",
		},
		[]string{"status"},
	)

	ShellAssets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "godchecker_shell_cache_assets",
			Help: "Number of assets in the active shell cache store",
		},
	)

	// Scrape metrics
	ScrapeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godchecker_scrape_runs_total",
			Help: "Scrape runs by outcome",
		},
		[]string{"status"},
	)

	ScrapeItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "godchecker_scrape_feed_items",
			Help: "Items in the feed after the last scrape run",
		},
	)

	ScrapeSourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godchecker_scrape_source_errors_total",
			Help: "Per-source scrape failures",
		},
		[]string{"source"},
	)

	ScrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "godchecker_scrape_duration_seconds",
			Help:    "Scrape run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godchecker_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation"},
	)

	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godchecker_db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"operation"},
	)
)

// SetAppInfo records static build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
	AppStartTime.Set(float64(time.Now().Unix()))
}

// Handler returns the metrics endpoint handler, enforcing the optional
// bearer token.
func Handler(cfg Config) http.Handler {
	inner := promhttp.Handler()
	if cfg.Token == "" {
		return inner
	}
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer "+cfg.Token {
			http.Error(rw, "unauthorized", http.StatusUnauthorized)
			return
		}
		inner.ServeHTTP(rw, req)
	})
}
