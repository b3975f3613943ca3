// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Errors wrap ErrInvalidConfig or ErrLoadConfig so callers can use errors.Is.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects json or console output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// MaxBodyBytes caps the size of request bodies accepted by the API.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// CORSAllowedOrigins lists origins allowed to call the API. "*" allows any.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// CORSAllowCredentials sets Access-Control-Allow-Credentials. Not allowed with "*".
	CORSAllowCredentials bool `koanf:"cors_allow_credentials"`

	// CORSMaxAge is the preflight cache lifetime in seconds.
	CORSMaxAge int `koanf:"cors_max_age"`

	// Tracing settings; see pkg/tracing.
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	TracingExporter   string  `koanf:"tracing_exporter"`
	TracingEndpoint   string  `koanf:"tracing_endpoint"`
	TracingSampleRate float64 `koanf:"tracing_sample_rate"` // 0 samples nothing

	// ServiceName is reported in health responses and trace resources.
	ServiceName string `koanf:"service_name"`

	// WatchConfig reloads the config file on change when set.
	WatchConfig bool `koanf:"watch_config"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// SystemMetricsInterval is how often memory and goroutine gauges are sampled.
	SystemMetricsInterval time.Duration `koanf:"system_metrics_interval"`
}

// Default values.
const (
	DefaultAddr         = ":5000"
	DefaultMaxBodyBytes = 1 << 20
	DefaultServiceName  = "are-you-drunk-yet"
)

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "json",
		Addr:                  DefaultAddr,
		MaxBodyBytes:          DefaultMaxBodyBytes,
		CORSAllowedOrigins:    []string{"*"},
		CORSMaxAge:            600,
		TracingExporter:       "otlp",
		TracingSampleRate:     1.0,
		ServiceName:           DefaultServiceName,
		ShutdownTimeout:       10 * time.Second,
		SystemMetricsInterval: 15 * time.Second,
	}
}

// Validate checks field values and normalizes list entries.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	origins := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSAllowedOrigins = origins
	if c.CORSAllowCredentials && c.AllowsAnyOrigin() {
		return fmt.Errorf("%w: cors_allow_credentials cannot be combined with wildcard origin", ErrInvalidConfig)
	}
	if c.CORSMaxAge < 0 {
		return fmt.Errorf("%w: cors_max_age must not be negative", ErrInvalidConfig)
	}

	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("%w: tracing_sample_rate must be within [0, 1]", ErrInvalidConfig)
	}
	switch strings.ToLower(c.TracingExporter) {
	case "", "otlp", "zipkin":
	default:
		return fmt.Errorf("%w: unknown tracing_exporter %q", ErrInvalidConfig, c.TracingExporter)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if c.SystemMetricsInterval <= 0 {
		return fmt.Errorf("%w: system_metrics_interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// AllowsAnyOrigin reports whether the wildcard origin is configured.
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.CORSAllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
