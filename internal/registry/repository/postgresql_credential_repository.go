// Package repository implements credential persistence for PostgreSQL and MySQL.
// Status transitions use optimistic updates guarded by the expected current
// status so that concurrent lifecycle operations never overwrite each other.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// PostgreSQLCredentialRepository implements Credential persistence for PostgreSQL databases.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new credential into the PostgreSQL database.
func (p *PostgreSQLCredentialRepository) Create(
	ctx context.Context,
	credential *registryDomain.Credential,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO credentials (id, name, system_name, system_type, environment, status, key_ref,
			  current_version, created_at, last_used_at, last_rotated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		credential.ID,
		credential.Name,
		credential.SystemName,
		credential.SystemType,
		credential.Environment,
		credential.Status,
		credential.KeyRef,
		credential.CurrentVersion,
		credential.CreatedAt,
		credential.LastUsedAt,
		credential.LastRotatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Get retrieves a credential by its ID.
func (p *PostgreSQLCredentialRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, system_name, system_type, environment, status, key_ref,
			  current_version, created_at, last_used_at, last_rotated_at
			  FROM credentials
			  WHERE id = $1`

	var credential registryDomain.Credential
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&credential.ID,
		&credential.Name,
		&credential.SystemName,
		&credential.SystemType,
		&credential.Environment,
		&credential.Status,
		&credential.KeyRef,
		&credential.CurrentVersion,
		&credential.CreatedAt,
		&credential.LastUsedAt,
		&credential.LastRotatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, registryDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}

	return &credential, nil
}

// List retrieves credentials matching the filter in creation order.
func (p *PostgreSQLCredentialRepository) List(
	ctx context.Context,
	filter registryDomain.Filter,
	offset, limit int,
) ([]*registryDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, system_name, system_type, environment, status, key_ref,
			  current_version, created_at, last_used_at, last_rotated_at
			  FROM credentials
			  WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Environment != "" {
		args = append(args, filter.Environment)
		query += fmt.Sprintf(" AND environment = $%d", len(args))
	}
	if filter.SystemType != "" {
		args = append(args, filter.SystemType)
		query += fmt.Sprintf(" AND system_type = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer rows.Close()

	credentials := make([]*registryDomain.Credential, 0)
	for rows.Next() {
		var credential registryDomain.Credential
		err := rows.Scan(
			&credential.ID,
			&credential.Name,
			&credential.SystemName,
			&credential.SystemType,
			&credential.Environment,
			&credential.Status,
			&credential.KeyRef,
			&credential.CurrentVersion,
			&credential.CreatedAt,
			&credential.LastUsedAt,
			&credential.LastRotatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}
		credentials = append(credentials, &credential)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}

	return credentials, nil
}

// UpdateStatus transitions a credential from one status to another. The update
// only applies when the stored status still equals from; zero rows affected
// means another operation changed the status first.
func (p *PostgreSQLCredentialRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to registryDomain.Status,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials
			  SET status = $1
			  WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return registryDomain.ErrInvalidTransition
	}

	return nil
}

// CompleteRotation atomically commits a rotation: the credential leaves the
// Rotating fence into Deprecated with its version bumped and lastRotatedAt set.
func (p *PostgreSQLCredentialRepository) CompleteRotation(
	ctx context.Context,
	id uuid.UUID,
	newVersion uint,
	rotatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials
			  SET status = $1, current_version = $2, last_rotated_at = $3
			  WHERE id = $4 AND status = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		registryDomain.StatusDeprecated,
		newVersion,
		rotatedAt,
		id,
		registryDomain.StatusRotating,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to complete rotation")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return registryDomain.ErrInvalidTransition
	}

	return nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL Credential repository instance.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
