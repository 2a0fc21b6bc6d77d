// Package worker provides the background grace-expiry sweeper. It drives the
// rotation scheduler's sweep on a fixed interval from the server process.
package worker

import (
	"context"
	"log/slog"
	"time"

	rotationUseCase "github.com/allisson/credentials/internal/rotation/usecase"
)

// Sweeper periodically expires due rotation grace windows.
type Sweeper struct {
	scheduler rotationUseCase.RotationSchedulerUseCase
	interval  time.Duration
	logger    *slog.Logger
}

// NewSweeper creates a new grace-expiry sweeper instance.
func NewSweeper(
	scheduler rotationUseCase.RotationSchedulerUseCase,
	interval time.Duration,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		scheduler: scheduler,
		interval:  interval,
		logger:    logger,
	}
}

// Start starts the sweep loop. Blocks until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("starting grace-expiry sweeper",
			slog.Duration("interval", s.interval),
		)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("stopping grace-expiry sweeper")
			}
			return ctx.Err()
		case <-ticker.C:
			processed, err := s.scheduler.SweepExpired(ctx)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("sweep pass failed",
						slog.Int("processed", processed),
						slog.Any("error", err),
					)
				}
				continue
			}
			if processed > 0 && s.logger != nil {
				s.logger.Info("sweep pass completed", slog.Int("processed", processed))
			}
		}
	}
}
