// Package config loads and validates the application configuration
// from a YAML file with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/naka-gawa/pr-size-dashboard/internal/domain"
)

// Sentinel errors returned by Validate.
var (
	ErrNoRepositories = errors.New("config must list at least one repository")
	ErrBadRepository  = errors.New("repository must be in org/name form")
)

// Config is the main application configuration.
type Config struct {
	// Repositories is the ordered list of org/name source repositories.
	Repositories []string `yaml:"repositories"`

	// MetricsPath is the path of the per-repository metrics file inside
	// each source repository.
	MetricsPath string `yaml:"metrics_path" env:"PRSIZE_METRICS_PATH"`

	// Output is the local path of the combined dataset.
	Output string `yaml:"output" env:"PRSIZE_OUTPUT"`

	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DashboardConfig configures the local dashboard server.
type DashboardConfig struct {
	Address     string  `yaml:"address" env:"PRSIZE_DASHBOARD_ADDRESS"`
	TargetScore float64 `yaml:"target_score" env:"PRSIZE_TARGET_SCORE"`
}

// Load reads the configuration file at path, applies environment
// overrides, defaults and validation.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults sets default values for configuration.
func (c *Config) SetDefaults() {
	if c.MetricsPath == "" {
		c.MetricsPath = "metrics/pr_size_scores.jsonl"
	}
	if c.Output == "" {
		c.Output = "data/pr_size_scores.jsonl"
	}
	if c.Dashboard.Address == "" {
		c.Dashboard.Address = ":8501"
	}
	if c.Dashboard.TargetScore == 0 {
		c.Dashboard.TargetScore = domain.TargetScore
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Repositories) == 0 {
		return ErrNoRepositories
	}
	for _, repo := range c.Repositories {
		owner, name, ok := strings.Cut(repo, "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("%w: %q", ErrBadRepository, repo)
		}
	}
	return nil
}
