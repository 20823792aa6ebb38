// Package scheduler triggers sync passes on a fixed interval.
//
// Passes never overlap: a tick that arrives while a pass runs is dropped.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// PassFunc runs one pass. It should return once ctx is done.
type PassFunc func(ctx context.Context)

// Scheduler runs a PassFunc at start and then on every interval tick.
type Scheduler struct {
	interval time.Duration
	pass     PassFunc
	logger   *slog.Logger
	trigger  chan struct{}
}

// New creates a scheduler. A nil logger uses slog.Default().
func New(interval time.Duration, pass PassFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		pass:     pass,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a pass outside the schedule. Requests made while one is
// already pending are merged.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done, running a pass immediately and then on
// every tick.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.interval = time.Hour
	}

	runOnce := func(reason string) {
		// select picks randomly among ready cases; a tick or trigger can
		// win over ctx.Done.
		if ctx.Err() != nil {
			s.logger.Debug("pass skipped, shutting down", "reason", reason)
			return
		}
		s.logger.Debug("pass starting", "reason", reason)
		start := time.Now()
		s.pass(ctx)
		s.logger.Debug("pass done", "reason", reason, "elapsed", time.Since(start))
	}

	runOnce("startup")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runOnce("interval")
		case <-s.trigger:
			runOnce("trigger")
		}
		// Ticks that fired during the pass are dropped.
		select {
		case <-ticker.C:
			s.logger.Debug("tick dropped, pass was running")
		default:
		}
	}
}
