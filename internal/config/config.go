package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"rosterforge/pkg/utils"
)

// Config is the full service configuration, loaded once at startup
type Config struct {
	Server struct {
		Addr           string `yaml:"addr"`
		FrontendOrigin string `yaml:"frontend_origin"`
	} `yaml:"server"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Logs struct {
		Dir string `yaml:"dir"`
	} `yaml:"logs"`
	Tasks struct {
		Retention     string `yaml:"retention"`      // how long terminal tasks stay queryable, e.g. "24h"
		SweepSchedule string `yaml:"sweep_schedule"` // cron spec for the registry sweep
	} `yaml:"tasks"`
	OAuth struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURI  string `yaml:"redirect_uri"`
		StateSecret  string `yaml:"state_secret"` // signs the OAuth state parameter
		TokenFile    string `yaml:"token_file"`   // single-user fallback token
	} `yaml:"oauth"`
}

// Load reads and validates a YAML config file, applying defaults for
// everything optional.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a runnable configuration without a config file
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// TaskRetention parses the retention window, falling back to 24h
func (c *Config) TaskRetention() time.Duration {
	return utils.ParseDuration(c.Tasks.Retention, 24*time.Hour)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.FrontendOrigin == "" {
		c.Server.FrontendOrigin = "http://localhost:5173"
	}
	if c.Store.Path == "" {
		c.Store.Path = "rosterforge.db"
	}
	if c.Logs.Dir == "" {
		c.Logs.Dir = "./logs"
	}
	if c.Tasks.SweepSchedule == "" {
		c.Tasks.SweepSchedule = "@every 10m"
	}
	if c.OAuth.RedirectURI == "" {
		c.OAuth.RedirectURI = "http://localhost:8080/auth/callback"
	}
	if c.OAuth.TokenFile == "" {
		c.OAuth.TokenFile = "token.json"
	}
}
