package main

import (
	"errors"
	"fmt"

	"github.com/kbukum/ssehub/config"
	"github.com/kbukum/ssehub/observability"
	"github.com/kbukum/ssehub/server"
	"github.com/kbukum/ssehub/sse"
	"github.com/kbukum/ssehub/version"
	"github.com/kbukum/ssehub/ws"
)

const serviceName = "ssehub"

// envPrefix scopes environment overrides, e.g. SSEHUB_SSE_QUEUE_CAPACITY=50.
const envPrefix = "SSEHUB"

// AppConfig is the full service configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	SSE           sse.Config           `yaml:"sse" mapstructure:"sse"`
	WS            ws.Config            `yaml:"ws" mapstructure:"ws"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.SSE.ApplyDefaults()
	c.WS.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates every section and reports all failures together.
func (c *AppConfig) Validate() error {
	var errs []error
	for _, check := range []struct {
		section string
		fn      func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"sse", c.SSE.Validate},
		{"ws", c.WS.Validate},
		{"observability", c.Observability.Validate},
	} {
		if err := check.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", check.section, err))
		}
	}
	return errors.Join(errs...)
}

// loadConfig reads config.yml, .env and SSEHUB_* variables, then applies
// defaults. Validation is left to the caller.
func loadConfig(configFile, envFile string) (*AppConfig, error) {
	cfg := &AppConfig{}
	opts := []config.LoaderOption{config.WithEnvPrefix(envPrefix)}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
