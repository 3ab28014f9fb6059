package sse

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/ssehub/component"
)

func TestConfig_DefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.QueueCapacity != 100 || cfg.SweepInterval != 10*time.Second || cfg.Path != "/events" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"negative capacity", Config{QueueCapacity: -1, SweepInterval: time.Second, Path: "/e"}, "queue_capacity"},
		{"negative interval", Config{QueueCapacity: 1, SweepInterval: -time.Second, Path: "/e"}, "sweep_interval"},
		{"relative path", Config{QueueCapacity: 1, SweepInterval: time.Second, Path: "events"}, "path"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	c := NewComponent(Config{QueueCapacity: 8, SweepInterval: time.Hour})
	ctx := context.Background()

	if c.Name() != "sse" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if c.Hub().Capacity() != 8 {
		t.Errorf("expected capacity 8, got %d", c.Hub().Capacity())
	}
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}

	c.Hub().Subscribe()
	h := c.Health(ctx)
	if h.Status != component.StatusHealthy || h.Message != "1 subscribers connected" {
		t.Errorf("unexpected health %+v", h)
	}
	if d := c.Describe(); d.Type != "sse" || !strings.Contains(d.Details, "capacity=8") {
		t.Errorf("unexpected description %+v", d)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Hub().Len() != 0 {
		t.Error("expected stop to close the hub")
	}
}
