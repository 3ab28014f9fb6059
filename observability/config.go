package observability

import (
	"time"

	"github.com/kbukum/ssehub/validation"
)

// Config holds telemetry export settings. Both signals are off by default.
type Config struct {
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Tracing  TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// TracingConfig controls span export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	v := validation.New()
	if c.Tracing.Enabled || c.Metrics.Enabled {
		v.Required("observability.endpoint", c.Endpoint)
	}
	v.Custom(c.Tracing.SampleRate >= 0 && c.Tracing.SampleRate <= 1,
		"observability.tracing.sample_rate", "must be between 0 and 1")
	if c.Metrics.Enabled {
		v.PositiveDuration("observability.metrics.interval", c.Metrics.Interval)
	}
	return v.Err()
}

// TracerConfig returns the tracer settings for a service.
func (c *Config) TracerConfig(serviceName, serviceVersion, environment string) TracerConfig {
	return TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.Tracing.SampleRate,
	}
}

// MeterConfig returns the meter settings for a service.
func (c *Config) MeterConfig(serviceName, serviceVersion, environment string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.Metrics.Interval,
	}
}
