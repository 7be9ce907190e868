package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds HTTP listener settings.
type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// Database holds PostgreSQL settings.
type Database struct {
	DSN string `yaml:"dsn"`
}

// Auth holds the session-token settings.
type Auth struct {
	Secret    string        `yaml:"secret"`
	AccessTTL time.Duration `yaml:"access_ttl"`
}

// RateLimit holds the per-IP token bucket settings.
type RateLimit struct {
	PerSecond int `yaml:"per_second"`
	Burst     int `yaml:"burst"`
}

// Config is the service configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Auth      Auth      `yaml:"auth"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

// Default returns the configuration used when no file or overrides are given.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Auth: Auth{
			AccessTTL: 15 * time.Minute,
		},
		RateLimit: RateLimit{
			PerSecond: 50,
			Burst:     100,
		},
	}
}

// Load reads configuration from the optional YAML file named by
// SEAMLINE_CONFIG (or the given path) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("SEAMLINE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SEAMLINE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SEAMLINE_PG_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SEAMLINE_AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
}
