package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

// Defaults of the add-on
const (
	DefaultDays           = 40
	DefaultRefreshMinutes = 360
	DefaultSensorPrefix   = "sedif"
	DefaultHomeAssistant  = "http://supervisor/core"
	DefaultAPIAddr        = ":8080"
	DefaultExportDir      = "exports"
	DefaultSinkTimeout    = 30 * time.Second
)

// Config holds every option of the pipeline. JSON add-on option files are
// read too since JSON is valid YAML; unknown keys are ignored.
type Config struct {
	Days                   int            `yaml:"days" json:"days"`
	PriceM3                *float64       `yaml:"price_m3" json:"price_m3,omitempty"`
	Debug                  bool           `yaml:"debug" json:"debug"`
	SensorPrefix           string         `yaml:"sensor_prefix" json:"sensor_prefix"`
	RefreshIntervalMinutes int            `yaml:"refresh_interval_minutes" json:"refresh_interval_minutes"`
	ExportDir              string         `yaml:"export_dir" json:"export_dir"`
	Sources                []model.Source `yaml:"sources" json:"sources"`
	HomeAssistant          HomeAssistant  `yaml:"home_assistant" json:"home_assistant"`
	API                    API            `yaml:"api" json:"api"`
	Log                    Log            `yaml:"log" json:"log"`
}

// HomeAssistant configures the publishing sink
type HomeAssistant struct {
	URL     string `yaml:"url" json:"url"`
	Token   string `yaml:"token" json:"-"`
	Timeout string `yaml:"timeout" json:"timeout"`
	Retries int    `yaml:"retries" json:"retries"`
}

// API configures the HTTP server
type API struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Log configures the logger
type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// envOverrides are read from the environment after the file
type envOverrides struct {
	Days            string `env:"SEDIF_DAYS"`
	PriceM3         string `env:"SEDIF_PRICE_M3"`
	Debug           string `env:"SEDIF_DEBUG"`
	CapturePath     string `env:"SEDIF_CAPTURE_PATH"`
	RefreshMinutes  string `env:"SEDIF_REFRESH_MINUTES"`
	ExportDir       string `env:"SEDIF_EXPORT_DIR"`
	HAURL           string `env:"HA_URL"`
	HAToken         string `env:"HA_TOKEN"`
	SupervisorToken string `env:"SUPERVISOR_TOKEN"`
	SensorPrefix    string `env:"HA_SENSOR_PREFIX"`
	APIAddr         string `env:"API_ADDR"`
	LogLevel        string `env:"LOG_LEVEL"`
	LogFormat       string `env:"LOG_FORMAT"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Days:                   DefaultDays,
		SensorPrefix:           DefaultSensorPrefix,
		RefreshIntervalMinutes: DefaultRefreshMinutes,
		ExportDir:              DefaultExportDir,
		HomeAssistant: HomeAssistant{
			URL:     DefaultHomeAssistant,
			Timeout: DefaultSinkTimeout.String(),
		},
		API: API{Addr: DefaultAPIAddr},
		Log: Log{Level: "info", Format: "text"},
	}
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads the optional YAML file at path, applies environment overrides
// and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to decode environment: %w", err)
	}

	if env.Days != "" {
		days, err := strconv.Atoi(strings.TrimSpace(env.Days))
		if err != nil {
			return fmt.Errorf("invalid SEDIF_DAYS %q: %w", env.Days, err)
		}
		c.Days = days
	}
	if env.PriceM3 != "" {
		price := utils.ParseOptionalFloat(env.PriceM3)
		if price == nil {
			return fmt.Errorf("invalid SEDIF_PRICE_M3 %q", env.PriceM3)
		}
		c.PriceM3 = price
	}
	if env.Debug != "" {
		c.Debug = utils.ParseBool(env.Debug)
	}
	if env.CapturePath != "" {
		c.Sources = []model.Source{SourceFromPath(env.CapturePath)}
	}
	if env.RefreshMinutes != "" {
		minutes, err := strconv.Atoi(strings.TrimSpace(env.RefreshMinutes))
		if err != nil {
			return fmt.Errorf("invalid SEDIF_REFRESH_MINUTES %q: %w", env.RefreshMinutes, err)
		}
		c.RefreshIntervalMinutes = minutes
	}
	setIfNotEmpty(&c.ExportDir, env.ExportDir)
	setIfNotEmpty(&c.HomeAssistant.URL, env.HAURL)
	setIfNotEmpty(&c.HomeAssistant.Token, env.HAToken)
	if c.HomeAssistant.Token == "" {
		c.HomeAssistant.Token = env.SupervisorToken
	}
	setIfNotEmpty(&c.SensorPrefix, env.SensorPrefix)
	setIfNotEmpty(&c.API.Addr, env.APIAddr)
	setIfNotEmpty(&c.Log.Level, env.LogLevel)
	setIfNotEmpty(&c.Log.Format, env.LogFormat)
	return nil
}

func (c *Config) applyDefaults() {
	if c.RefreshIntervalMinutes <= 0 {
		c.RefreshIntervalMinutes = DefaultRefreshMinutes
	}
	if c.SensorPrefix == "" {
		c.SensorPrefix = DefaultSensorPrefix
	}
	if c.HomeAssistant.URL == "" {
		c.HomeAssistant.URL = DefaultHomeAssistant
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}
	if c.API.Addr == "" {
		c.API.Addr = DefaultAPIAddr
	}
	if c.Debug {
		c.Log.Level = "debug"
	}
}

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", c.Days)
	}
	if c.PriceM3 != nil && *c.PriceM3 < 0 {
		return fmt.Errorf("price_m3 cannot be negative")
	}
	if c.RefreshIntervalMinutes <= 0 {
		return fmt.Errorf("refresh interval must be greater than 0")
	}
	if c.HomeAssistant.Retries < 0 {
		return fmt.Errorf("home assistant retries cannot be negative")
	}
	for i, src := range c.Sources {
		switch strings.ToLower(src.Type) {
		case "dir", "file", "url":
		default:
			return fmt.Errorf("source %d has unknown type %q", i, src.Type)
		}
		if src.URL == "" {
			return fmt.Errorf("source %d must have a url or path", i)
		}
	}
	return nil
}

// RequireSources fails when there is nothing to ingest
func (c *Config) RequireSources() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one capture source must be configured (sources or SEDIF_CAPTURE_PATH)")
	}
	return nil
}

// RefreshInterval is the delay between scheduled runs
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMinutes) * time.Minute
}

// SinkTimeout is the HTTP timeout of the publishing sink
func (c *Config) SinkTimeout() time.Duration {
	return utils.ParseDuration(c.HomeAssistant.Timeout, DefaultSinkTimeout)
}

// PublishEnabled reports whether results should be pushed to Home Assistant
func (c *Config) PublishEnabled() bool {
	return c.HomeAssistant.URL != "" && c.HomeAssistant.Token != ""
}

// SourceFromPath guesses the source type of a capture location
func SourceFromPath(p string) model.Source {
	lower := strings.ToLower(p)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return model.Source{Type: "url", URL: p}
	}
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return model.Source{Type: "dir", URL: p}
	}
	return model.Source{Type: "file", URL: p}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
