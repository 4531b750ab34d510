// Package config loads server configuration from a yaml file and the
// environment. Priority: env vars (TRAK_ prefix) > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// WorkspaceConfig identifies the workspace the server executes against.
type WorkspaceConfig struct {
	ID       string `yaml:"id" envconfig:"ID"`
	PageSize int    `yaml:"page_size" envconfig:"PAGE_SIZE"`
}

// HTTPConfig contains HTTP API settings.
type HTTPConfig struct {
	Enable bool   `yaml:"enable" envconfig:"ENABLE"`
	Addr   string `yaml:"addr" envconfig:"ADDR"`
	APIKey string `yaml:"api_key" envconfig:"API_KEY"`
}

// Config is the root configuration structure.
type Config struct {
	// LogLevel controls structured logging verbosity (DEBUG, INFO, WARN, ERROR).
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	Workspace WorkspaceConfig `yaml:"workspace" envconfig:"WORKSPACE"`

	HTTP HTTPConfig `yaml:"http" envconfig:"HTTP"`
}

// Load reads configuration from the given path, or from the default
// locations (./trak.yaml, ~/.trak/config.yaml) when the path is empty.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	if path == "" {
		if _, err := os.Stat("trak.yaml"); err == nil {
			path = "trak.yaml"
		} else if home, err := os.UserHomeDir(); err == nil {
			defaultPath := filepath.Join(home, ".trak", "config.yaml")
			if _, err := os.Stat(defaultPath); err == nil {
				path = defaultPath
			}
		}
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("TRAK", cfg); err != nil {
		return nil, fmt.Errorf("process env vars: %w", err)
	}

	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Workspace.ID == "" {
		cfg.Workspace.ID = "ws_local"
	}
	if cfg.Workspace.PageSize <= 0 {
		cfg.Workspace.PageSize = 500
	}

	return cfg, nil
}
