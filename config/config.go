// Package config loads the service configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	ML struct {
		ModelPath string `yaml:"model_path"`
	} `yaml:"ml"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var config Config
	config.Database.Path = "predictions.db"
	config.Http.Port = 8080
	config.Log.Level = "info"
	config.ML.ModelPath = "model.gob"
	return &config
}

// Load reads a yaml config file. A missing file is not an error: the
// defaults are returned so the demo runs with zero setup.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return config, nil
}

// DatabaseURL returns the connection string from the environment, empty when
// unset. Consulted once at startup; the selection is never re-evaluated.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}
