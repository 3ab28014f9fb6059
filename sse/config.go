package sse

import (
	"time"

	"github.com/kbukum/ssehub/validation"
)

// Config holds hub and sweeper settings.
type Config struct {
	QueueCapacity int           `yaml:"queue_capacity" mapstructure:"queue_capacity"`
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
	Path          string        `yaml:"path" mapstructure:"path"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.QueueCapacity == 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.Path == "" {
		c.Path = "/events"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.New().
		Min("sse.queue_capacity", c.QueueCapacity, 1).
		PositiveDuration("sse.sweep_interval", c.SweepInterval).
		PathPrefix("sse.path", c.Path).
		Err()
}
