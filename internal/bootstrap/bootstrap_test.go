package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"go-water-pipeline/internal/config"
	"go-water-pipeline/internal/hass"
	"go-water-pipeline/internal/logging"
)

func TestNewRunnerPublisher(t *testing.T) {
	cfg := config.Default()
	runner := NewRunner(cfg, logging.Discard())
	require.Nil(t, runner.Publisher)
	require.NotNil(t, runner.Ingester)
	require.NotNil(t, runner.Exporter)

	cfg.HomeAssistant.Token = "tok"
	runner = NewRunner(cfg, logging.Discard())
	require.IsType(t, &hass.Client{}, runner.Publisher)
}

func TestLoadReadsEnvFile(t *testing.T) {
	for _, k := range []string{"SEDIF_DAYS", "HA_TOKEN", "SUPERVISOR_TOKEN", "LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SEDIF_DAYS=14\nHA_TOKEN=secret\nLOG_LEVEL=debug\n"), 0o644))

	cfg, log, err := Load("", envFile)
	require.NoError(t, err)
	require.Equal(t, 14, cfg.Days)
	require.True(t, cfg.PublishEnabled())
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
}
