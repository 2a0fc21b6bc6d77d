// Package repository implements data persistence for authorization entities.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
// Grants are stored as a JSON array of operation names.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
)

// PostgreSQLPrincipalRepository implements Principal persistence for PostgreSQL.
type PostgreSQLPrincipalRepository struct {
	db *sql.DB
}

// Create inserts a new Principal into the PostgreSQL database.
func (p *PostgreSQLPrincipalRepository) Create(ctx context.Context, principal *authzDomain.Principal) error {
	querier := database.GetTx(ctx, p.db)

	grantsJSON, err := json.Marshal(principal.Grants)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal principal grants")
	}

	query := `INSERT INTO principals (id, name, secret, is_active, grants, failed_attempts, locked_until, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		principal.ID,
		principal.Name,
		principal.Secret,
		principal.IsActive,
		grantsJSON,
		principal.FailedAttempts,
		principal.LockedUntil,
		principal.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create principal")
	}
	return nil
}

// Get retrieves a Principal by ID from the PostgreSQL database.
func (p *PostgreSQLPrincipalRepository) Get(ctx context.Context, id uuid.UUID) (*authzDomain.Principal, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, secret, is_active, grants, failed_attempts, locked_until, created_at
			  FROM principals WHERE id = $1`

	return scanPostgreSQLPrincipal(querier.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a Principal by its unique name from the PostgreSQL database.
func (p *PostgreSQLPrincipalRepository) GetByName(ctx context.Context, name string) (*authzDomain.Principal, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, secret, is_active, grants, failed_attempts, locked_until, created_at
			  FROM principals WHERE name = $1`

	return scanPostgreSQLPrincipal(querier.QueryRowContext(ctx, query, name))
}

// UpdateLockState persists the principal's failed-attempt counter and lockout deadline.
func (p *PostgreSQLPrincipalRepository) UpdateLockState(
	ctx context.Context,
	id uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE principals SET failed_attempts = $1, locked_until = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update principal lock state")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return authzDomain.ErrPrincipalNotFound
	}

	return nil
}

func scanPostgreSQLPrincipal(row *sql.Row) (*authzDomain.Principal, error) {
	var principal authzDomain.Principal
	var grantsJSON []byte

	err := row.Scan(
		&principal.ID,
		&principal.Name,
		&principal.Secret,
		&principal.IsActive,
		&grantsJSON,
		&principal.FailedAttempts,
		&principal.LockedUntil,
		&principal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrPrincipalNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get principal")
	}

	if err := json.Unmarshal(grantsJSON, &principal.Grants); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal principal grants")
	}

	return &principal, nil
}

// NewPostgreSQLPrincipalRepository creates a new PostgreSQL Principal repository.
func NewPostgreSQLPrincipalRepository(db *sql.DB) *PostgreSQLPrincipalRepository {
	return &PostgreSQLPrincipalRepository{db: db}
}
