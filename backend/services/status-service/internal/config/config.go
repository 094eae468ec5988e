package config

import (
	"errors"
	"os"
	"strings"

	libconfig "evdash/backend/libs/config"
)

const defaultHTTPPort = "3000"

// Config defines status service configuration.
type Config struct {
	HTTP struct {
		Port        string `yaml:"port" env:"STATUS_HTTP_PORT"`
		CORSOrigins string `yaml:"cors_origins" env:"STATUS_CORS_ORIGINS"`
	} `yaml:"http"`
	Redis struct {
		Addr     string `yaml:"addr" env:"STATUS_REDIS_ADDR"`
		Password string `yaml:"password" env:"STATUS_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"STATUS_REDIS_DB"`
		Channel  string `yaml:"channel" env:"STATUS_REDIS_CHANNEL"`
	} `yaml:"redis"`
	Static struct {
		Dir string `yaml:"dir" env:"STATUS_STATIC_DIR"`
	} `yaml:"static"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultHTTPPort
	cfg.Redis.Channel = "status:latest"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks optional sections that were switched on.
func (c *Config) Validate() error {
	if dir := strings.TrimSpace(c.Static.Dir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return errors.New("static dir is not a directory")
		}
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	return libconfig.Addr(c.HTTP.Port, defaultHTTPPort)
}

// RedisEnabled reports whether snapshots should be published.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}
