package ws

import (
	"time"

	"github.com/kbukum/ssehub/validation"
)

// Defaults for connection keep-alive.
const (
	DefaultWriteWait = 10 * time.Second
	DefaultPongWait  = 60 * time.Second
	DefaultReadLimit = 512
)

// Config holds WebSocket transport settings.
type Config struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`

	// WriteWait bounds a single frame write.
	WriteWait time.Duration `yaml:"write_wait" mapstructure:"write_wait"`
	// PongWait is how long the peer may stay silent before the connection
	// is considered dead.
	PongWait time.Duration `yaml:"pong_wait" mapstructure:"pong_wait"`
	// PingPeriod must be shorter than PongWait. Defaults to 9/10 of it.
	PingPeriod time.Duration `yaml:"ping_period" mapstructure:"ping_period"`
	// ReadLimit caps inbound message size in bytes.
	ReadLimit int64 `yaml:"read_limit" mapstructure:"read_limit"`

	// AllowedOrigins lists accepted Origin values. Empty means same origin
	// only; "*" accepts any.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "/ws"
	}
	if c.WriteWait == 0 {
		c.WriteWait = DefaultWriteWait
	}
	if c.PongWait == 0 {
		c.PongWait = DefaultPongWait
	}
	if c.PingPeriod == 0 {
		c.PingPeriod = c.PongWait * 9 / 10
	}
	if c.ReadLimit == 0 {
		c.ReadLimit = DefaultReadLimit
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.New().
		PathPrefix("ws.path", c.Path).
		PositiveDuration("ws.write_wait", c.WriteWait).
		PositiveDuration("ws.pong_wait", c.PongWait).
		PositiveDuration("ws.ping_period", c.PingPeriod).
		Custom(c.PingPeriod < c.PongWait, "ws.ping_period", "must be shorter than ws.pong_wait").
		Custom(c.ReadLimit > 0, "ws.read_limit", "must be positive").
		Err()
}
