package config

import (
	"errors"
	"strings"
	"time"

	libconfig "evdash/backend/libs/config"
)

const defaultHTTPPort = "5050"

// Config defines fleet-api configuration.
type Config struct {
	HTTP struct {
		Port        string `yaml:"port" env:"FLEET_HTTP_PORT"`
		CORSOrigins string `yaml:"cors_origins" env:"FLEET_CORS_ORIGINS"`
	} `yaml:"http"`
	DB struct {
		DSN          string `yaml:"dsn" env:"FLEET_DB_DSN"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"FLEET_DB_MAX_OPEN_CONNS"`
		MaxIdleConns int    `yaml:"max_idle_conns" env:"FLEET_DB_MAX_IDLE_CONNS"`
		Migrate      bool   `yaml:"migrate" env:"FLEET_DB_MIGRATE"`
	} `yaml:"db"`
	ML struct {
		URL     string        `yaml:"url" env:"ML_URL"`
		Timeout time.Duration `yaml:"timeout" env:"ML_TIMEOUT"`
	} `yaml:"ml"`
	System struct {
		CPUSampleInterval time.Duration `yaml:"cpu_sample_interval" env:"FLEET_CPU_SAMPLE_INTERVAL"`
	} `yaml:"system"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultHTTPPort
	cfg.ML.URL = "http://ml-service:8001"
	cfg.ML.Timeout = 10 * time.Second
	cfg.System.CPUSampleInterval = time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate requires a database.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("db.dsn is required")
	}
	if strings.TrimSpace(c.ML.URL) == "" {
		return errors.New("ml.url is required")
	}
	if c.System.CPUSampleInterval <= 0 || c.System.CPUSampleInterval > 5*time.Second {
		return errors.New("system.cpu_sample_interval must be in (0, 5s]")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	return libconfig.Addr(c.HTTP.Port, defaultHTTPPort)
}
