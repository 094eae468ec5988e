package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	libconfig "evdash/backend/libs/config"
)

const defaultHTTPPort = "8090"

// Config defines dashboard service configuration.
type Config struct {
	HTTP struct {
		Port        string `yaml:"port" env:"DASHBOARD_HTTP_PORT"`
		CORSOrigins string `yaml:"cors_origins" env:"DASHBOARD_CORS_ORIGINS"`
	} `yaml:"http"`
	FleetAPI struct {
		URL          string        `yaml:"url" env:"FLEET_API_URL"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FLEET_API_FETCH_TIMEOUT"`
	} `yaml:"fleet_api"`
	Poller struct {
		Interval         time.Duration `yaml:"interval" env:"POLL_INTERVAL"`
		TransactionLimit int           `yaml:"transaction_limit" env:"POLL_TRANSACTION_LIMIT"`
		ForecastHours    int           `yaml:"forecast_hours" env:"POLL_FORECAST_HOURS"`
	} `yaml:"poller"`
	WS struct {
		WriteTimeout time.Duration `yaml:"write_timeout" env:"WS_WRITE_TIMEOUT"`
		PingInterval time.Duration `yaml:"ping_interval" env:"WS_PING_INTERVAL"`
	} `yaml:"ws"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultHTTPPort
	cfg.FleetAPI.URL = "http://localhost:8000"
	cfg.FleetAPI.FetchTimeout = 3 * time.Second
	cfg.Poller.Interval = 5 * time.Second
	cfg.Poller.TransactionLimit = 50
	cfg.Poller.ForecastHours = 24
	cfg.WS.WriteTimeout = 10 * time.Second
	cfg.WS.PingInterval = 30 * time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the poller cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.FleetAPI.URL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("fleet_api.url must be an absolute URL")
	}
	if c.FleetAPI.FetchTimeout <= 0 {
		return errors.New("fleet_api.fetch_timeout must be positive")
	}
	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be positive")
	}
	if c.Poller.TransactionLimit < 1 || c.Poller.TransactionLimit > 100 {
		return errors.New("poller.transaction_limit must be between 1 and 100")
	}
	if c.Poller.ForecastHours < 1 {
		return errors.New("poller.forecast_hours must be positive")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	return libconfig.Addr(c.HTTP.Port, defaultHTTPPort)
}
