// Package config loads optional scan defaults from a YAML file. Flags always
// win over file values; a missing default file is not an error.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the tunable knobs of a scan.
type Config struct {
	UserAgent        string    `yaml:"user_agent"`
	Timeout          Duration  `yaml:"timeout"`
	Concurrency      int       `yaml:"concurrency"`
	ConnLimit        int       `yaml:"conn_limit"`
	Retries          int       `yaml:"retries"`
	MaxBodyBytes     int64     `yaml:"max_body_bytes"`
	RateLimitPerHost RateLimit `yaml:"rate_limit_per_host"`
}

// RateLimit applies a token bucket per probed host; zero values disable it.
type RateLimit struct {
	Requests int      `yaml:"requests"`
	Window   Duration `yaml:"window"`
}

// Default returns the built-in knob values.
func Default() Config {
	return Config{
		Timeout:      DurationFrom(10 * time.Second),
		Concurrency:  25,
		ConnLimit:    50,
		Retries:      3,
		MaxBodyBytes: 120000,
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Concurrency < 0 || c.ConnLimit < 0 || c.Retries < 0 {
		return fmt.Errorf("concurrency, conn_limit and retries must not be negative")
	}
	return nil
}

// Duration wraps time.Duration to support human-readable YAML values.
type Duration struct {
	time.Duration
}

// DurationFrom creates a Duration from a standard time.Duration.
func DurationFrom(d time.Duration) Duration {
	return Duration{Duration: d}
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// UnmarshalYAML accepts either a string duration ("10s") or numeric seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		d.Duration = parsed
		return nil
	case int:
		d.Duration = time.Duration(v) * time.Second
		return nil
	case float64:
		d.Duration = time.Duration(v * float64(time.Second))
		return nil
	default:
		return fmt.Errorf("unsupported duration type %T", raw)
	}
}
