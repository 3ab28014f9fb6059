package client

import (
	"net/url"
	"time"

	"github.com/kbukum/ssehub/security"
	"github.com/kbukum/ssehub/validation"
)

// Config points a Client at a hub.
type Config struct {
	// URL is the hub's base URL, e.g. http://localhost:8080.
	URL        string             `yaml:"url" mapstructure:"url"`
	EventsPath string             `yaml:"events_path" mapstructure:"events_path"`
	Timeout    time.Duration      `yaml:"timeout" mapstructure:"timeout"` // publish requests only
	TLS        security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:8080"
	}
	if c.EventsPath == "" {
		c.EventsPath = "/events"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	validURL := err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	return validation.New().
		Custom(validURL, "client.url", "must be an absolute http or https URL").
		PathPrefix("client.events_path", c.EventsPath).
		PositiveDuration("client.timeout", c.Timeout).
		Err()
}
