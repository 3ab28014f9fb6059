package main

import (
	"context"
	"fmt"

	"github.com/kbukum/ssehub/bootstrap"
	"github.com/kbukum/ssehub/component"
	"github.com/kbukum/ssehub/logger"
	"github.com/kbukum/ssehub/observability"
	"github.com/kbukum/ssehub/server"
	"github.com/kbukum/ssehub/server/endpoint"
	"github.com/kbukum/ssehub/sse"
	"github.com/kbukum/ssehub/ws"
)

// service is the wired application plus the handles tests need.
type service struct {
	app    *bootstrap.App[*AppConfig]
	hub    *sse.Hub
	server *server.Server
}

func serve(ctx context.Context, cfg *AppConfig, opts ...bootstrap.Option) error {
	svc, err := newService(cfg, opts...)
	if err != nil {
		return err
	}
	return svc.app.Run(ctx)
}

// newService validates cfg and wires telemetry, the hub and the HTTP server.
// Components start in that order and stop in reverse.
func newService(cfg *AppConfig, opts ...bootstrap.Option) (*service, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := app.Logger

	// Instruments bind to the global provider, which the telemetry
	// component installs on start.
	meter := observability.Meter(serviceName)
	hubMetrics, err := sse.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("hub metrics: %w", err)
	}
	httpMetrics, err := observability.NewMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	hubComponent := sse.NewComponent(cfg.SSE,
		sse.WithLogger(log.WithComponent("sse")),
		sse.WithMetrics(hubMetrics),
	)
	hub := hubComponent.Hub()

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll, httpMetrics, endpoint.StatsSource{
		Name:     "sse",
		Snapshot: func() any { return hub.Stats() },
	})
	engine := srv.GinEngine()
	sse.RegisterRoutes(engine, hub, cfg.SSE.Path, srv.RateLimiter())
	if cfg.WS.Enabled {
		ws.RegisterRoutes(engine, hub, cfg.WS)
	}

	for _, c := range []component.Component{
		observability.NewComponent(cfg.Observability, cfg.Name, cfg.Version, cfg.Environment),
		hubComponent,
		server.NewComponent(srv),
	} {
		if err := app.RegisterComponent(c); err != nil {
			return nil, err
		}
	}

	// Open streams never go idle; ending them first lets the server drain.
	app.OnStop(func(context.Context) error {
		hub.Close()
		return nil
	})
	app.OnReady(func(context.Context) error {
		log.Info("Accepting subscribers", map[string]interface{}{
			"addr":                srv.Addr(),
			"events_path":         cfg.SSE.Path,
			"ws_enabled":          cfg.WS.Enabled,
			logger.FieldTransport: transports(cfg),
		})
		return nil
	})

	return &service{app: app, hub: hub, server: srv}, nil
}

func transports(cfg *AppConfig) []string {
	t := []string{"sse"}
	if cfg.WS.Enabled {
		t = append(t, "ws")
	}
	return t
}
