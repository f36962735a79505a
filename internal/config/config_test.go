package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MARKETDASH_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, filepath.Join("data", "merged_output_np.xlsx"), cfg.Data.NewsPath())
	assert.Equal(t, filepath.Join("data", "merged_output_stocks.xlsx"), cfg.Data.StocksPath())
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MARKETDASH_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("MARKETDASH_SERVER_PORT", "9999")
	t.Setenv("MARKETDASH_LOGGING_LEVEL", "debug")
	t.Setenv("MARKETDASH_DATA_NEWS_FILE", "/srv/data/news.xlsx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/srv/data/news.xlsx", cfg.Data.NewsPath())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 3000
logging:
  level: warn
data:
  dir: /var/lib/marketdash
`
	require.NoError(t, os.WriteFile(configFile, []byte(yaml), 0o644))
	t.Setenv("MARKETDASH_CONFIG", configFile)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/var/lib/marketdash", cfg.Data.Dir)
	// Unmentioned fields keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  port: 3000\n"), 0o644))
	t.Setenv("MARKETDASH_CONFIG", configFile)
	t.Setenv("MARKETDASH_SERVER_PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("MARKETDASH_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("MARKETDASH_LOGGING_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level")
}
