// Package config loads linepool run settings from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	lperrors "github.com/vnykmshr/linepool/pkg/common/errors"
	"github.com/vnykmshr/linepool/pkg/common/validation"
	"github.com/vnykmshr/linepool/pkg/linecount"
)

const module = "config"

// Config holds the settings of a counting run.
type Config struct {
	// Input is a directory whose files matching Ext are counted.
	Input string `yaml:"input" json:"input"`
	// Files are counted in addition to the contents of Input.
	Files []string `yaml:"files" json:"files"`
	Ext   string   `yaml:"ext" json:"ext"`
	// Output is the report file. Empty disables the report.
	Output string `yaml:"output" json:"output"`
	// Threads is the worker count; 0 selects the number of CPUs.
	Threads int `yaml:"threads" json:"threads"`

	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
	// Schedule is a standard five-field cron expression. Empty runs once.
	Schedule string `yaml:"schedule" json:"schedule"`

	Redis RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig configures the line count cache. An empty Addr disables it.
type RedisConfig struct {
	Addr   string `yaml:"addr" json:"addr"`
	DB     int    `yaml:"db" json:"db"`
	Prefix string `yaml:"prefix" json:"prefix"`
	// TTL is a time.ParseDuration string; "0s" keeps entries forever.
	TTL string `yaml:"ttl" json:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Ext: linecount.DefaultExt,
		Redis: RedisConfig{
			Prefix: "linepool",
			TTL:    "24h",
		},
	}
}

// LoadFile reads a configuration file. The format is chosen by extension
// (.yaml, .yml or .json); keys missing from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return config, nil
}

// Validate checks every field and returns all problems joined together.
func (c *Config) Validate() error {
	errs := []error{
		validation.ValidateNonNegative(module, "threads", c.Threads),
		validation.ValidateExtension(module, "ext", c.Ext),
		validation.ValidateNonNegative(module, "redis.db", c.Redis.DB),
	}

	if _, err := c.CacheTTL(); err != nil {
		errs = append(errs, err)
	}

	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			errs = append(errs, lperrors.NewValidationError(module, "schedule", c.Schedule, err.Error()).
				WithHint("use a five-field cron expression such as \"*/5 * * * *\" or a descriptor like \"@hourly\""))
		}
	}

	return errors.Join(errs...)
}

// CacheTTL parses Redis.TTL. An empty value means no expiry.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Redis.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Redis.TTL)
	if err != nil {
		return 0, lperrors.NewValidationError(module, "redis.ttl", c.Redis.TTL, "not a duration").
			WithHint("use a value like 30m or 24h")
	}
	if err := validation.ValidateNonNegativeDuration(module, "redis.ttl", d); err != nil {
		return 0, err
	}
	return d, nil
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}
