package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/ssehub/component"
	"github.com/kbukum/ssehub/logger"
)

// DefaultGracefulTimeout bounds the whole shutdown sequence.
const DefaultGracefulTimeout = 15 * time.Second

// App runs a service whose configuration type is C.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	summaryOut      io.Writer

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := resolveOptions(opts)
	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		gracefulTimeout: DefaultGracefulTimeout,
		summaryOut:      os.Stdout,
	}
	if o.gracefulTimeout > 0 {
		app.gracefulTimeout = o.gracefulTimeout
	}
	if o.summaryOut != nil {
		app.summaryOut = o.summaryOut
	}
	if o.logger != nil {
		app.Logger = o.logger
		logger.SetGlobalLogger(o.logger)
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	return app, nil
}

// RegisterComponent adds a component. Registration order is start order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck reports every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(unhealthy, ", "))
	}
	return nil
}

// Run starts the service, blocks until SIGINT/SIGTERM or ctx is done, then
// shuts down gracefully.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Info("Application ready, waiting for shutdown signal")
	<-sigCtx.Done()
	a.Logger.Info("Shutdown requested", map[string]interface{}{
		"cause": context.Cause(sigCtx).Error(),
	})

	return a.Shutdown(context.WithoutCancel(ctx))
}

// Start runs the startup sequence: components, OnStart hooks, ready check,
// OnReady hooks, summary. A failure stops whatever had already started.
func (a *App[C]) Start(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return a.abort(ctx, fmt.Errorf("initialization failed: %w", err))
	}
	if err := runHooks(ctx, "start", a.onStart); err != nil {
		return a.abort(ctx, err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
	if err := runHooks(ctx, "ready", a.onReady); err != nil {
		return a.abort(ctx, err)
	}

	NewSummary(a.Name, a.Version, time.Since(began)).Write(ctx, a.summaryOut, a.Components)
	return nil
}

func (a *App[C]) abort(ctx context.Context, cause error) error {
	if err := a.Shutdown(context.WithoutCancel(ctx)); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// Shutdown runs the OnStop hooks and stops every started component in
// reverse order, all within the graceful timeout.
func (a *App[C]) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, "stop", a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
