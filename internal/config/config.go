package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Router    RouterConfig    `yaml:"router"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// ArchiveConfig points at the encrypted object store that holds the
// complete summary history, plus the local state cache directory.
type ArchiveConfig struct {
	URL      string `yaml:"url"`
	APIKey   string `yaml:"api_key"`
	StateDir string `yaml:"state_dir"`
}

// RouterConfig tunes the tiered query router. RecencyThresholdDays of 0
// means use the built-in default.
type RouterConfig struct {
	RecencyThresholdDays int `yaml:"recency_threshold_days"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix HEALTHVAULT_ and underscore-separated paths:
//
//	HEALTHVAULT_SERVER_HOST, HEALTHVAULT_SERVER_PORT,
//	HEALTHVAULT_DB_HOST, HEALTHVAULT_DB_PORT, HEALTHVAULT_DB_NAME,
//	HEALTHVAULT_DB_USER, HEALTHVAULT_DB_PASSWORD, HEALTHVAULT_DB_SSLMODE,
//	HEALTHVAULT_ARCHIVE_URL, HEALTHVAULT_ARCHIVE_API_KEY,
//	HEALTHVAULT_ARCHIVE_STATE_DIR, HEALTHVAULT_ROUTER_RECENCY_DAYS,
//	HEALTHVAULT_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEALTHVAULT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("HEALTHVAULT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HEALTHVAULT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("HEALTHVAULT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("HEALTHVAULT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("HEALTHVAULT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("HEALTHVAULT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("HEALTHVAULT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("HEALTHVAULT_ARCHIVE_URL"); v != "" {
		cfg.Archive.URL = v
	}
	if v := os.Getenv("HEALTHVAULT_ARCHIVE_API_KEY"); v != "" {
		cfg.Archive.APIKey = v
	}
	if v := os.Getenv("HEALTHVAULT_ARCHIVE_STATE_DIR"); v != "" {
		cfg.Archive.StateDir = v
	}
	if v := os.Getenv("HEALTHVAULT_ROUTER_RECENCY_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Router.RecencyThresholdDays = days
		}
	}
	if v := os.Getenv("HEALTHVAULT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Archive.URL == "" {
		return fmt.Errorf("archive.url is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Router.RecencyThresholdDays < 0 {
		return fmt.Errorf("router.recency_threshold_days must not be negative")
	}
	return nil
}
