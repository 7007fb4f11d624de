package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-water-pipeline/internal/model"
)

var envKeys = []string{
	"SEDIF_DAYS", "SEDIF_PRICE_M3", "SEDIF_DEBUG", "SEDIF_CAPTURE_PATH",
	"SEDIF_REFRESH_MINUTES", "SEDIF_EXPORT_DIR", "HA_URL", "HA_TOKEN",
	"SUPERVISOR_TOKEN", "HA_SENSOR_PREFIX", "API_ADDR", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 40, cfg.Days)
	require.Equal(t, "sedif", cfg.SensorPrefix)
	require.Equal(t, "http://supervisor/core", cfg.HomeAssistant.URL)
	require.Equal(t, 6*time.Hour, cfg.RefreshInterval())
	require.Equal(t, 30*time.Second, cfg.SinkTimeout())
	require.Nil(t, cfg.PriceM3)
	require.False(t, cfg.PublishEnabled())
	require.Error(t, cfg.RequireSources())
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
days: 14
price_m3: 4.32
sensor_prefix: maison
export_dir: /tmp/out
sources:
  - type: dir
    url: ./captures
home_assistant:
  url: http://ha.local:8123
  token: abc
  timeout: 5s
  retries: 2
log:
  level: warn
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 14, cfg.Days)
	require.InDelta(t, 4.32, *cfg.PriceM3, 1e-9)
	require.Equal(t, "maison", cfg.SensorPrefix)
	require.Equal(t, []model.Source{{Type: "dir", URL: "./captures"}}, cfg.Sources)
	require.Equal(t, 5*time.Second, cfg.SinkTimeout())
	require.Equal(t, 2, cfg.HomeAssistant.Retries)
	require.True(t, cfg.PublishEnabled())
	require.Equal(t, "warn", cfg.Log.Level)
	require.NoError(t, cfg.RequireSources())
}

func TestLoadAddonOptions(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "options.json", `{
  "sedif_username": "someone@example.com",
  "sedif_password": "secret",
  "debug": true,
  "sensor_prefix": "eau",
  "refresh_interval_minutes": 0
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "eau", cfg.SensorPrefix)
	require.Equal(t, DefaultRefreshMinutes, cfg.RefreshIntervalMinutes)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("SEDIF_DAYS", "7")
	t.Setenv("SEDIF_PRICE_M3", "3.5")
	t.Setenv("SEDIF_CAPTURE_PATH", dir)
	t.Setenv("SUPERVISOR_TOKEN", "supervisor")
	t.Setenv("HA_SENSOR_PREFIX", "water")
	t.Setenv("SEDIF_REFRESH_MINUTES", "-5")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Days)
	require.InDelta(t, 3.5, *cfg.PriceM3, 1e-9)
	require.Equal(t, []model.Source{{Type: "dir", URL: dir}}, cfg.Sources)
	require.Equal(t, "supervisor", cfg.HomeAssistant.Token)
	require.Equal(t, "water", cfg.SensorPrefix)
	require.Equal(t, DefaultRefreshMinutes, cfg.RefreshIntervalMinutes)
}

func TestHATokenWinsOverSupervisorToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("HA_TOKEN", "user")
	t.Setenv("SUPERVISOR_TOKEN", "supervisor")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "user", cfg.HomeAssistant.Token)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(*Config) {}, ok: true},
		{name: "zero days", mutate: func(c *Config) { c.Days = 0 }},
		{name: "negative price", mutate: func(c *Config) { p := -1.0; c.PriceM3 = &p }},
		{name: "negative retries", mutate: func(c *Config) { c.HomeAssistant.Retries = -1 }},
		{name: "unknown source", mutate: func(c *Config) { c.Sources = []model.Source{{Type: "ftp", URL: "x"}} }},
		{name: "empty source", mutate: func(c *Config) { c.Sources = []model.Source{{Type: "file"}} }},
	}
	for _, test := range cases {
		cfg := Default()
		test.mutate(cfg)
		err := cfg.Validate()
		if test.ok {
			require.NoError(t, err, test.name)
		} else {
			require.Error(t, err, test.name)
		}
	}
}

func TestInvalidEnvDays(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEDIF_DAYS", "forty")

	_, err := Load("")
	require.Error(t, err)
}

func TestSourceFromPath(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, "url", SourceFromPath("https://example.com/captures.json").Type)
	require.Equal(t, "dir", SourceFromPath(dir).Type)
	require.Equal(t, "file", SourceFromPath(filepath.Join(dir, "captures.ndjson")).Type)
}
