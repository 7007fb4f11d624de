// Package bootstrap builds the configured runner shared by the CLI and the
// API server.
package bootstrap

import (
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"go-water-pipeline/internal/config"
	"go-water-pipeline/internal/hass"
	"go-water-pipeline/internal/logging"
	"go-water-pipeline/internal/pipeline"
)

// Load reads the .env files then the config file, and builds the logger it
// asks for
func Load(configPath string, envFiles ...string) (*config.Config, *logrus.Logger, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format), nil
}

// NewRunner wires ingestion, export and, when a token is configured,
// publishing to Home Assistant
func NewRunner(cfg *config.Config, log logrus.FieldLogger) *pipeline.Runner {
	client := resty.New().SetTimeout(cfg.SinkTimeout())

	runner := &pipeline.Runner{
		Config:    cfg,
		Ingester:  pipeline.NewIngester(client, log.WithField("component", "ingest")),
		Exporter:  pipeline.NewExportManager(cfg.ExportDir),
		Heuristic: pipeline.DefaultHeuristic,
		Log:       log,
	}

	if !cfg.PublishEnabled() {
		log.Info("Home Assistant publishing disabled, no token configured")
		return runner
	}
	runner.Publisher = hass.NewClient(hass.Options{
		BaseURL: cfg.HomeAssistant.URL,
		Token:   cfg.HomeAssistant.Token,
		Prefix:  cfg.SensorPrefix,
		Timeout: cfg.SinkTimeout(),
		Retries: cfg.HomeAssistant.Retries,
	}, log.WithField("component", "hass"))
	return runner
}
