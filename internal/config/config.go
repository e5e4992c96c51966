// Package config loads the erdviewer profile file.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// DefaultFileName is the profile read when no --config flag is given
const DefaultFileName = "erdviewer.yaml"

// ConnectionConfig names the catalog source. Database and Schema override the
// names carried by the URL.
type ConnectionConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
	Schema   string `yaml:"schema"`
}

// Config is the YAML config file layout. Command-line flags take precedence
// over every field.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Theme      string           `yaml:"theme"`
	OutputDir  string           `yaml:"output_dir"`
}

// LoadEnv loads a .env file from the working directory into the environment.
// A missing file is not an error; variables already set are kept.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load reads a profile file. ${VAR} references in the connection URL are
// expanded from the environment, so secrets can live in .env.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes profile YAML
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Connection.URL = os.ExpandEnv(cfg.Connection.URL)
	return &cfg, nil
}
