package server

import (
	"fmt"
	"time"

	"github.com/kbukum/ssehub/security"
	"github.com/kbukum/ssehub/server/middleware"
	"github.com/kbukum/ssehub/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
	// ReadTimeout and IdleTimeout are in seconds. WriteTimeout also applies
	// to event streams unless the handler clears it, which ServeSSE does.
	ReadTimeout     int                        `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    int                        `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     int                        `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration              `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	MaxBodySize     string                     `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "1MB"
	CORS            middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit       middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	// TLS serves HTTPS with HTTP/2 when cert_file and key_file are set.
	// Without it the server speaks HTTP/1.1 and h2c.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Last-Event-ID"}
	}
}

// Validate checks the configuration for invalid values. Port 0 is allowed
// and binds an ephemeral port.
func (c *Config) Validate() error {
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	return validation.New().
		Range("server.port", c.Port, 0, 65535).
		Min("server.read_timeout", c.ReadTimeout, 0).
		Min("server.write_timeout", c.WriteTimeout, 0).
		Min("server.idle_timeout", c.IdleTimeout, 0).
		Min("server.rate_limit.requests_per_minute", c.RateLimit.RequestsPerMinute, 0).
		PositiveDuration("server.shutdown_timeout", c.ShutdownTimeout).
		Err()
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
