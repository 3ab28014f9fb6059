package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/ssehub/component"
)

// Component wraps a Hub and its Sweeper as a lifecycle-managed component.
type Component struct {
	hub     *Hub
	sweeper *Sweeper
	cfg     Config
}

// ensure Component satisfies component.Component and Describable.
var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a hub and sweeper from cfg.
func NewComponent(cfg Config, opts ...HubOption) *Component {
	cfg.ApplyDefaults()
	opts = append([]HubOption{WithQueueCapacity(cfg.QueueCapacity)}, opts...)
	hub := NewHub(opts...)
	return &Component{
		hub:     hub,
		sweeper: NewSweeper(hub, cfg.SweepInterval),
		cfg:     cfg,
	}
}

// Hub returns the underlying Hub.
func (c *Component) Hub() *Hub { return c.hub }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start launches the sweeper.
func (c *Component) Start(ctx context.Context) error {
	return c.sweeper.Start(ctx)
}

// Stop halts the sweeper and ends every subscriber stream.
func (c *Component) Stop(ctx context.Context) error {
	err := c.sweeper.Stop(ctx)
	c.hub.Close()
	return err
}

// Health reports the number of registered subscribers.
func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d subscribers connected", c.hub.Len()),
	}
}

// Describe returns infrastructure summary info for the startup summary.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name: "SSE Hub",
		Type: "sse",
		Details: fmt.Sprintf("path=%s capacity=%d sweep=%s",
			c.cfg.Path, c.cfg.QueueCapacity, c.cfg.SweepInterval),
	}
}
