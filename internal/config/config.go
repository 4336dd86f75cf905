package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

const FileName = "pipewatch.yaml"

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Snapshot string         `yaml:"snapshot"`
	Records  []string       `yaml:"records"`
	Log      LogConfig      `yaml:"log"`
	Validate ValidateConfig `yaml:"validate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ValidateConfig struct {
	EndpointConstraint string `yaml:"endpoint_constraint"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Snapshot) == "" {
		return fmt.Errorf("snapshot path is required")
	}
	for i, path := range cfg.Records {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("records entry %d is empty", i)
		}
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", cfg.Log.Format)
	}

	if cfg.Validate.EndpointConstraint != "" {
		if _, err := semver.NewConstraint(cfg.Validate.EndpointConstraint); err != nil {
			return fmt.Errorf("invalid endpoint constraint %q: %w", cfg.Validate.EndpointConstraint, err)
		}
	}

	return nil
}
