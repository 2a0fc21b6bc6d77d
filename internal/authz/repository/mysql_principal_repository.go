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

// MySQLPrincipalRepository implements Principal persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLPrincipalRepository struct {
	db *sql.DB
}

// Create inserts a new Principal into the MySQL database.
func (m *MySQLPrincipalRepository) Create(ctx context.Context, principal *authzDomain.Principal) error {
	querier := database.GetTx(ctx, m.db)

	id, err := principal.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal principal id")
	}

	grantsJSON, err := json.Marshal(principal.Grants)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal principal grants")
	}

	query := `INSERT INTO principals (id, name, secret, is_active, grants, failed_attempts, locked_until, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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

// Get retrieves a Principal by ID from the MySQL database.
func (m *MySQLPrincipalRepository) Get(ctx context.Context, id uuid.UUID) (*authzDomain.Principal, error) {
	querier := database.GetTx(ctx, m.db)

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal principal id")
	}

	query := `SELECT id, name, secret, is_active, grants, failed_attempts, locked_until, created_at
			  FROM principals WHERE id = ?`

	return scanMySQLPrincipal(querier.QueryRowContext(ctx, query, binaryID))
}

// GetByName retrieves a Principal by its unique name from the MySQL database.
func (m *MySQLPrincipalRepository) GetByName(ctx context.Context, name string) (*authzDomain.Principal, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, secret, is_active, grants, failed_attempts, locked_until, created_at
			  FROM principals WHERE name = ?`

	return scanMySQLPrincipal(querier.QueryRowContext(ctx, query, name))
}

// UpdateLockState persists the principal's failed-attempt counter and lockout deadline.
func (m *MySQLPrincipalRepository) UpdateLockState(
	ctx context.Context,
	id uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal principal id")
	}

	query := `UPDATE principals SET failed_attempts = ?, locked_until = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, binaryID)
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

func scanMySQLPrincipal(row *sql.Row) (*authzDomain.Principal, error) {
	var principal authzDomain.Principal
	var binaryID []byte
	var grantsJSON []byte

	err := row.Scan(
		&binaryID,
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

	id, err := uuid.FromBytes(binaryID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal principal id")
	}
	principal.ID = id

	if err := json.Unmarshal(grantsJSON, &principal.Grants); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal principal grants")
	}

	return &principal, nil
}

// NewMySQLPrincipalRepository creates a new MySQL Principal repository.
func NewMySQLPrincipalRepository(db *sql.DB) *MySQLPrincipalRepository {
	return &MySQLPrincipalRepository{db: db}
}
