// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "godchecker-static-v1", cfg.Cache.Version)
	assert.Equal(t, DefaultShell, cfg.Cache.Shell)
	assert.Equal(t, "@hourly", cfg.Scrape.Schedule)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen: ":9090"
cache:
  version: godchecker-static-v2
scrape:
  schedule: "@every 30m"
  sources:
    kantei:
      - https://example.org/kantei
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "godchecker-static-v2", cfg.Cache.Version)
	assert.Equal(t, "@every 30m", cfg.Scrape.Schedule)
	assert.Equal(t, []string{"https://example.org/kantei"}, cfg.Scrape.Sources.Kantei)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultShell, cfg.Cache.Shell)
	assert.Equal(t, 60, cfg.Feed.RetentionDays)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  lisen: \":9090\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  version: godchecker-static-v2\n"), 0o644))

	t.Setenv("GODCHECKER_CACHE_VERSION", "godchecker-static-v3")
	t.Setenv("GODCHECKER_LISTEN", "127.0.0.1:3000")
	t.Setenv("GODCHECKER_METRICS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "godchecker-static-v3", cfg.Cache.Version)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Listen)
	assert.True(t, cfg.Server.Metrics.Enabled)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
