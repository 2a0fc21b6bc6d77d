package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/allisson/credentials/internal/rotation/usecase"
)

// RunSweepExpired runs a single grace-expiry sweep pass, closing every
// rotation whose grace window has elapsed. Intended for deployments that run
// the sweep as an external cron instead of the in-process worker.
func RunSweepExpired(
	ctx context.Context,
	rotationSchedulerUseCase rotationUseCase.RotationSchedulerUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("sweeping expired grace windows")

	processed, err := rotationSchedulerUseCase.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep expired grace windows: %w", err)
	}

	logger.Info("sweep completed", slog.Int("processed", processed))

	if format == "json" {
		return outputJSON(writer, map[string]any{"processed": processed})
	}

	_, _ = fmt.Fprintf(writer, "Sweep completed: %d grace window(s) expired\n", processed)
	return nil
}
