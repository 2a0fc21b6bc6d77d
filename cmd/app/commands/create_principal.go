package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	authzUseCase "github.com/allisson/credentials/internal/authz/usecase"
)

// RunCreatePrincipal creates a new API principal with the given grants. The
// grants argument is a comma-separated list of operations, or "all" for every
// operation. The plain secret is printed once and never stored.
//
// Requirements: Database must be migrated and accessible.
func RunCreatePrincipal(
	ctx context.Context,
	principalUseCase authzUseCase.PrincipalUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	isActive bool,
	grants string,
	format string,
) error {
	logger.Info("creating new principal", slog.String("name", name))

	operations, err := parseGrants(grants)
	if err != nil {
		return err
	}

	input := &authzDomain.CreatePrincipalInput{
		Name:     name,
		IsActive: isActive,
		Grants:   operations,
	}

	output, err := principalUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create principal: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]any{
			"id":     output.ID,
			"name":   name,
			"secret": output.PlainSecret,
		})
	}

	_, _ = fmt.Fprintf(writer, "Principal created successfully\n\n")
	_, _ = fmt.Fprintf(writer, "ID:     %s\n", output.ID)
	_, _ = fmt.Fprintf(writer, "Name:   %s\n", name)
	_, _ = fmt.Fprintf(writer, "Secret: %s\n\n", output.PlainSecret)
	_, _ = fmt.Fprintf(writer, "Store the secret now. It cannot be retrieved again.\n")

	return nil
}

// parseGrants converts a comma-separated grant list into operations. The
// special value "all" expands to every operation.
func parseGrants(grants string) ([]authzDomain.Operation, error) {
	if strings.TrimSpace(grants) == "all" {
		return authzDomain.AllOperations, nil
	}

	var operations []authzDomain.Operation
	for _, grant := range strings.Split(grants, ",") {
		grant = strings.TrimSpace(grant)
		if grant == "" {
			continue
		}
		operation := authzDomain.Operation(grant)
		if !operation.IsValid() {
			return nil, fmt.Errorf("unknown operation: %s", grant)
		}
		operations = append(operations, operation)
	}

	if len(operations) == 0 {
		return nil, fmt.Errorf("at least one grant is required")
	}

	return operations, nil
}
