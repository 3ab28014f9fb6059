package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/ssehub/component"
)

// Component installs the configured telemetry providers on Start and
// flushes them on Stop.
type Component struct {
	cfg         Config
	serviceName string
	version     string
	environment string

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a telemetry component for a service.
func NewComponent(cfg Config, serviceName, version, environment string) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:         cfg,
		serviceName: serviceName,
		version:     version,
		environment: environment,
	}
}

// Name returns the component name.
func (c *Component) Name() string { return "telemetry" }

// Start initializes the enabled providers.
func (c *Component) Start(ctx context.Context) error {
	if c.cfg.Tracing.Enabled {
		tp, err := InitTracer(ctx, c.cfg.TracerConfig(c.serviceName, c.version, c.environment))
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		c.tp = tp
	}
	if c.cfg.Metrics.Enabled {
		mp, err := InitMeter(ctx, c.cfg.MeterConfig(c.serviceName, c.version, c.environment))
		if err != nil {
			return fmt.Errorf("init meter: %w", err)
		}
		c.mp = mp
	}
	return nil
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		if err := c.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		c.tp = nil
	}
	if c.mp != nil {
		if err := c.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		c.mp = nil
	}
	return errors.Join(errs...)
}

// Health reports which signals are being exported. Telemetry is never
// critical, so a disabled signal is not a failure.
func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: c.summary(),
	}
}

// Describe returns infrastructure summary info for the startup summary.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "OpenTelemetry",
		Type:    "telemetry",
		Details: fmt.Sprintf("%s %s", c.cfg.Endpoint, c.summary()),
	}
}

func (c *Component) summary() string {
	return fmt.Sprintf("tracing=%t metrics=%t", c.cfg.Tracing.Enabled, c.cfg.Metrics.Enabled)
}
