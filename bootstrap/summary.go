package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/ssehub/component"
)

// Summary renders the startup report from what the registered components
// say about themselves.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a startup summary.
func NewSummary(serviceName, version string, startupDuration time.Duration) *Summary {
	return &Summary{
		serviceName:     serviceName,
		version:         version,
		startupDuration: startupDuration,
	}
}

// Write prints the summary: components implementing Describable, routes
// from RouteProviders, then live health.
func (s *Summary) Write(ctx context.Context, w io.Writer, registry *component.Registry) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("\n%s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var infra []component.Description
	var routes []component.Route
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
			infra = append(infra, desc)
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(infra) > 0 {
		p("\nInfrastructure\n")
		for i, d := range infra {
			p("   %s %s [%s]: %s\n", branch(i, len(infra)), d.Name, d.Type, d.Details)
		}
	}

	if len(routes) > 0 {
		p("\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			p("   %s %-7s %s -> %s\n", branch(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	health := registry.HealthAll(ctx)
	if len(health) > 0 {
		p("\nHealth (%s)\n", component.Overall(health))
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " - " + h.Message
			}
			p("   %s %s %s: %s%s\n", branch(i, len(health)), healthMark(h.Status), h.Name,
				strings.ToLower(string(h.Status)), msg)
		}
	}
	p("\n")
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "[ok]"
	case component.StatusDegraded:
		return "[!!]"
	default:
		return "[xx]"
	}
}
