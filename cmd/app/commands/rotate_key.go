package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
	rotationUseCase "github.com/allisson/credentials/internal/rotation/usecase"
)

// RunRotateKey rotates a credential to its next version. A zero grace period
// uses the configured default. Outputs the rotation record in either text or
// JSON format.
//
// Requirements: Database must be migrated and the credential must be Active.
func RunRotateKey(
	ctx context.Context,
	rotationSchedulerUseCase rotationUseCase.RotationSchedulerUseCase,
	logger *slog.Logger,
	writer io.Writer,
	keyID string,
	gracePeriod time.Duration,
	format string,
) error {
	id, err := uuid.Parse(keyID)
	if err != nil {
		return fmt.Errorf("invalid key id: %w", err)
	}

	logger.Info("rotating credential", slog.String("key_id", keyID))

	record, err := rotationSchedulerUseCase.Rotate(systemContext(ctx), rotationDomain.RotateInput{
		KeyID:       id,
		GracePeriod: gracePeriod,
	})
	if err != nil {
		return fmt.Errorf("failed to rotate credential: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]any{
			"id":               record.ID,
			"key_id":           record.KeyID,
			"old_version":      record.OldVersion,
			"new_version":      record.NewVersion,
			"initiated_at":     record.InitiatedAt,
			"grace_expires_at": record.GraceExpiresAt,
		})
	}

	_, _ = fmt.Fprintf(writer, "Credential rotated successfully\n\n")
	_, _ = fmt.Fprintf(writer, "Rotation ID:    %s\n", record.ID)
	_, _ = fmt.Fprintf(writer, "Key ID:         %s\n", record.KeyID)
	_, _ = fmt.Fprintf(writer, "Version:        %d -> %d\n", record.OldVersion, record.NewVersion)
	_, _ = fmt.Fprintf(writer, "Grace expires:  %s\n", record.GraceExpiresAt.Format(time.RFC3339))

	return nil
}
