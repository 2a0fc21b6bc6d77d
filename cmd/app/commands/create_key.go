package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	registryDomain "github.com/allisson/credentials/internal/registry/domain"
	registryUseCase "github.com/allisson/credentials/internal/registry/usecase"
)

// RunCreateKey registers a new credential in the registry. Outputs the
// credential ID and metadata in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateKey(
	ctx context.Context,
	keyRegistryUseCase registryUseCase.KeyRegistryUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name, systemName, systemType, environment, keyRef string,
	format string,
) error {
	logger.Info("creating new credential", slog.String("name", name))

	input := registryDomain.CreateKeyInput{
		Name:        name,
		SystemName:  systemName,
		SystemType:  systemType,
		Environment: environment,
		KeyRef:      keyRef,
	}

	credential, err := keyRegistryUseCase.Create(systemContext(ctx), input)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]any{
			"id":              credential.ID,
			"name":            credential.Name,
			"system_name":     credential.SystemName,
			"environment":     credential.Environment,
			"status":          credential.Status,
			"current_version": credential.CurrentVersion,
		})
	}

	_, _ = fmt.Fprintf(writer, "Credential created successfully\n\n")
	_, _ = fmt.Fprintf(writer, "ID:          %s\n", credential.ID)
	_, _ = fmt.Fprintf(writer, "Name:        %s\n", credential.Name)
	_, _ = fmt.Fprintf(writer, "System:      %s (%s)\n", credential.SystemName, credential.SystemType)
	_, _ = fmt.Fprintf(writer, "Environment: %s\n", credential.Environment)
	_, _ = fmt.Fprintf(writer, "Status:      %s\n", credential.Status)
	_, _ = fmt.Fprintf(writer, "Version:     %d\n", credential.CurrentVersion)

	return nil
}
