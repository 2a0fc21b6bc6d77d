package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	rotationUseCase "github.com/allisson/credentials/internal/rotation/usecase"
)

// RunExpireGrace closes the grace window of a single credential, revoking it
// when the window has elapsed. A no-op when the window is still open or the
// credential is not Deprecated.
func RunExpireGrace(
	ctx context.Context,
	rotationSchedulerUseCase rotationUseCase.RotationSchedulerUseCase,
	logger *slog.Logger,
	writer io.Writer,
	keyID string,
) error {
	id, err := uuid.Parse(keyID)
	if err != nil {
		return fmt.Errorf("invalid key id: %w", err)
	}

	logger.Info("expiring grace window", slog.String("key_id", keyID))

	if err := rotationSchedulerUseCase.ExpireGrace(ctx, id); err != nil {
		return fmt.Errorf("failed to expire grace window: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Grace expiry processed for credential %s\n", keyID)
	return nil
}
