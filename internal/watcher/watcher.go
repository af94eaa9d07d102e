// Package watcher repeats availability checks at a fixed interval until stopped.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrServiceClosed is returned when running a service which was already stopped.
	ErrServiceClosed = errors.New("service closed")
	// ErrInvalidInterval is returned when the check interval is not strictly positive.
	ErrInvalidInterval = errors.New("check interval must be positive")
)

// Cycle is a single check. It handles its own errors.
type Cycle func(ctx context.Context)

// Service runs a Cycle immediately, then once per interval.
type Service struct {
	cycle    Cycle
	interval time.Duration

	// This context is used to interrupt the service. A cycle in progress sees it canceled.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running chan struct{} // Closed when the service is not running.
}

// New creates a new watcher service running cycle every interval.
func New(ctx context.Context, cycle Cycle, interval time.Duration) (*Service, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	running := make(chan struct{})
	close(running) // Close immediately to avoid blocking on the channel.

	return &Service{
		cycle:    cycle,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		running:  running,
	}, nil
}

// Run starts checking. It blocks until Quit is called or the parent context is canceled.
func (s *Service) Run() error {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return ErrServiceClosed
	}
	running := make(chan struct{})
	s.running = running
	s.mu.Unlock()
	defer close(running)

	slog.Info("Watcher started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.cycle(s.ctx)
	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Watcher stopped", "reason", s.ctx.Err())
			return nil
		case <-ticker.C:
			s.cycle(s.ctx)
		}
	}
}

// Quit stops the service.
// Blocks until the cycle in progress, if any, has returned.
func (s *Service) Quit() {
	slog.Info("Stopping watcher")
	s.cancel()

	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	<-running
}
