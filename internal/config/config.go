// Package config merges defaults, an optional YAML file and the environment
// (including a .env file) into one Config. Command-line flags are applied
// on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every knob shared by the jobs.
type Config struct {
	Workers       int           `yaml:"workers"`
	RPS           float64       `yaml:"rps"`
	Timeout       time.Duration `yaml:"timeout"`
	Retries       int           `yaml:"retries"`
	UserAgent     string        `yaml:"user_agent"`
	IgnoreRobots  bool          `yaml:"ignore_robots"`
	RobotsTimeout time.Duration `yaml:"robots_timeout"`
	MetricsAddr   string        `yaml:"metrics_addr"`
	LogLevel      string        `yaml:"log_level"`
	PrettyLog     bool          `yaml:"pretty_log"`

	Drops       DropRules `yaml:"drops"`
	IconDir     string    `yaml:"icon_dir"`
	ModelViewer string    `yaml:"model_viewer"`
}

// DropRules are the thresholds the drops job filters with.
type DropRules struct {
	MinChance  float64 `yaml:"min_chance"`
	OutOfRatio float64 `yaml:"outof_ratio"`
	MinQuality int64   `yaml:"min_quality"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workers:       4,
		RPS:           1,
		Timeout:       15 * time.Second,
		Retries:       2,
		UserAgent:     "Mozilla/5.0",
		RobotsTimeout: 5 * time.Second,
		LogLevel:      "info",
		Drops: DropRules{
			MinChance:  0.01,
			OutOfRatio: 0.25,
			MinQuality: 3,
		},
		IconDir:     "./icons",
		ModelViewer: "http://localhost:3001/modelviewer/classic",
	}
}

// Load builds a Config from defaults, then path (if non-empty), then the
// environment. A missing .env file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	_ = godotenv.Load()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	str("WOWSCRAPE_USER_AGENT", &c.UserAgent)
	str("WOWSCRAPE_METRICS_ADDR", &c.MetricsAddr)
	str("WOWSCRAPE_ICON_DIR", &c.IconDir)
	str("WOWSCRAPE_MODEL_VIEWER", &c.ModelViewer)
	str("LOG_LEVEL", &c.LogLevel)
	num("WOWSCRAPE_WORKERS", func(v string) (err error) { c.Workers, err = strconv.Atoi(v); return })
	num("WOWSCRAPE_RPS", func(v string) (err error) { c.RPS, err = strconv.ParseFloat(v, 64); return })
	num("WOWSCRAPE_RETRIES", func(v string) (err error) { c.Retries, err = strconv.Atoi(v); return })
	num("WOWSCRAPE_TIMEOUT", func(v string) (err error) { c.Timeout, err = time.ParseDuration(v); return })
	num("WOWSCRAPE_IGNORE_ROBOTS", func(v string) (err error) { c.IgnoreRobots, err = strconv.ParseBool(v); return })
	return errors.Join(errs...)
}

// Validate rejects settings the jobs can't run with.
func (c Config) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	case c.Retries < 0:
		return fmt.Errorf("retries must be >= 0, got %d", c.Retries)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	case c.Drops.OutOfRatio < 0 || c.Drops.OutOfRatio > 1:
		return fmt.Errorf("drops.outof_ratio must be within [0,1], got %g", c.Drops.OutOfRatio)
	}
	return nil
}
