// Package config loads the olisurvey configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Runner      RunnerConfig      `yaml:"runner"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServiceConfig configures the remote chemistry service client.
type ServiceConfig struct {
	// RootURL is the base URL of the chemistry service.
	RootURL string `yaml:"root_url"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// PollIntervalSeconds is the delay between result polls for
	// asynchronous calculations.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	// MaxBodyBytes caps response bodies to prevent memory exhaustion.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// RunnerConfig configures the batch runner.
type RunnerConfig struct {
	// Parallelism is the number of in-flight calculations.
	Parallelism int `yaml:"parallelism"`
	// RequestsPerSecond rate-limits calls to the service.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Burst is the limiter burst size.
	Burst int `yaml:"burst"`
	// MaxRetries is the per-point retry budget.
	MaxRetries int `yaml:"max_retries"`
}

// CredentialsConfig locates the sealed credential file.
type CredentialsConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			TimeoutSeconds:      30,
			PollIntervalSeconds: 2,
			MaxBodyBytes:        8 << 20,
		},
		Runner: RunnerConfig{
			Parallelism:       4,
			RequestsPerSecond: 2,
			Burst:             2,
			MaxRetries:        2,
		},
		Credentials: CredentialsConfig{
			Path: "credentials.sealed",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromPath loads and validates configuration from a YAML file. Fields
// left unset in the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Service.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: service.timeout_seconds must be positive")
	}
	if c.Service.PollIntervalSeconds <= 0 {
		return fmt.Errorf("config: service.poll_interval_seconds must be positive")
	}
	if c.Service.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: service.max_body_bytes must be positive")
	}
	if c.Runner.Parallelism <= 0 {
		return fmt.Errorf("config: runner.parallelism must be positive")
	}
	if c.Runner.RequestsPerSecond <= 0 {
		return fmt.Errorf("config: runner.requests_per_second must be positive")
	}
	if c.Runner.Burst <= 0 {
		return fmt.Errorf("config: runner.burst must be positive")
	}
	if c.Runner.MaxRetries < 0 {
		return fmt.Errorf("config: runner.max_retries must not be negative")
	}
	if c.Credentials.Path == "" {
		return fmt.Errorf("config: credentials.path is required")
	}
	return nil
}

// Timeout returns the per-request timeout.
func (s ServiceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// PollInterval returns the result poll interval.
func (s ServiceConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}
