package sse

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/ssehub/logger"
)

// DefaultSweepInterval bounds how long a dead subscriber can linger.
const DefaultSweepInterval = 10 * time.Second

// Sweeper calls Hub.Sweep on a fixed interval, independent of traffic.
type Sweeper struct {
	hub      *Hub
	interval time.Duration
	log      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper for hub. Non-positive intervals fall back to
// DefaultSweepInterval.
func NewSweeper(hub *Hub, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		hub:      hub,
		interval: interval,
		log:      logger.WithComponent("sweeper"),
	}
}

// Interval returns the sweep period.
func (s *Sweeper) Interval() time.Duration {
	return s.interval
}

// Start launches the sweep loop. Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(loopCtx, s.done)

	s.log.Debug("Sweeper started", map[string]interface{}{
		"interval": s.interval.String(),
	})
	return nil
}

// Stop ends the sweep loop and waits for it to exit or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		s.log.Debug("Sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := s.hub.Sweep(); evicted > 0 {
				s.log.Info("Evicted stale subscribers", map[string]interface{}{
					"evicted":   evicted,
					"remaining": s.hub.Len(),
				})
			}
		}
	}
}
