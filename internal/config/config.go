// Package config loads the tallyup.yaml configuration.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tallyup-dev/tallyup/internal/statement"
)

// Config represents the top-level tallyup.yaml configuration.
type Config struct {
	Server     ServerConfig             `yaml:"server"`
	Database   DatabaseConfig           `yaml:"database"`
	Uploads    UploadsConfig            `yaml:"uploads"`
	Statements []statement.FilenameRule `yaml:"statements,omitempty"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig points at the SQLite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// UploadsConfig controls where the statement ingest log is kept.
type UploadsConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a tallyup.yaml file, then applies environment overrides. A .env
// file in the working directory is honored when present; TALLYUP_ADDR and
// TALLYUP_DB override the file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new installation.
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Addr: ":8585"},
		Database:   DatabaseConfig{Path: "tallyup.db"},
		Uploads:    UploadsConfig{Dir: "uploads"},
		Statements: statement.DefaultRules(),
	}
}

func (c *Config) applyEnv() {
	_ = godotenv.Load()
	if addr := os.Getenv("TALLYUP_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if db := os.Getenv("TALLYUP_DB"); db != "" {
		c.Database.Path = db
	}
}
