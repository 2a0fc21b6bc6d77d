// Package repository implements allocation persistence for PostgreSQL and MySQL.
// Scopes are stored as JSON documents; active-pair uniqueness is enforced by a
// partial (PostgreSQL) or generated-column (MySQL) unique index.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
)

// PostgreSQLAllocationRepository implements Allocation persistence for PostgreSQL databases.
type PostgreSQLAllocationRepository struct {
	db *sql.DB
}

// Create inserts a new allocation into the PostgreSQL database.
func (p *PostgreSQLAllocationRepository) Create(
	ctx context.Context,
	allocation *allocationDomain.Allocation,
) error {
	querier := database.GetTx(ctx, p.db)

	scopeJSON, err := json.Marshal(allocation.Scope)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allocation scope")
	}

	query := `INSERT INTO allocations (id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		allocation.ID,
		allocation.KeyID,
		allocation.ConsumerType,
		allocation.ConsumerID,
		scopeJSON,
		allocation.CreatedAt,
		allocation.RevokedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create allocation")
	}
	return nil
}

// Get retrieves an allocation by its ID, revoked or not.
func (p *PostgreSQLAllocationRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*allocationDomain.Allocation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at
			  FROM allocations
			  WHERE id = $1`

	allocation, err := scanPostgreSQLAllocation(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, allocationDomain.ErrAllocationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get allocation")
	}

	return allocation, nil
}

// GetActiveByKeyAndConsumer retrieves the active allocation for a
// (key, consumer) pair. At most one exists.
func (p *PostgreSQLAllocationRepository) GetActiveByKeyAndConsumer(
	ctx context.Context,
	keyID uuid.UUID,
	consumerID string,
) (*allocationDomain.Allocation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at
			  FROM allocations
			  WHERE key_id = $1 AND consumer_id = $2 AND revoked_at IS NULL`

	allocation, err := scanPostgreSQLAllocation(querier.QueryRowContext(ctx, query, keyID, consumerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, allocationDomain.ErrAllocationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active allocation")
	}

	return allocation, nil
}

// UpdateScope replaces the scope of an active allocation.
func (p *PostgreSQLAllocationRepository) UpdateScope(
	ctx context.Context,
	id uuid.UUID,
	scope allocationDomain.Scope,
) error {
	querier := database.GetTx(ctx, p.db)

	scopeJSON, err := json.Marshal(scope)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allocation scope")
	}

	query := `UPDATE allocations
			  SET scope = $1
			  WHERE id = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, scopeJSON, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update allocation scope")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return allocationDomain.ErrAllocationNotFound
	}

	return nil
}

// Revoke marks an active allocation as revoked. Zero rows affected means the
// allocation is absent or already revoked.
func (p *PostgreSQLAllocationRepository) Revoke(
	ctx context.Context,
	id uuid.UUID,
	revokedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE allocations
			  SET revoked_at = $1
			  WHERE id = $2 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, revokedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke allocation")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return allocationDomain.ErrAllocationNotFound
	}

	return nil
}

// ListForKey retrieves active allocations for a credential in creation order.
func (p *PostgreSQLAllocationRepository) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	query := `SELECT id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at
			  FROM allocations
			  WHERE key_id = $1 AND revoked_at IS NULL
			  ORDER BY id ASC
			  LIMIT $2 OFFSET $3`

	return p.listAllocations(ctx, query, keyID, limit, offset)
}

// ListForConsumer retrieves active allocations for a consumer in creation order.
func (p *PostgreSQLAllocationRepository) ListForConsumer(
	ctx context.Context,
	consumerID string,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	query := `SELECT id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at
			  FROM allocations
			  WHERE consumer_id = $1 AND revoked_at IS NULL
			  ORDER BY id ASC
			  LIMIT $2 OFFSET $3`

	return p.listAllocations(ctx, query, consumerID, limit, offset)
}

// listAllocations runs a list query and scans the result rows.
func (p *PostgreSQLAllocationRepository) listAllocations(
	ctx context.Context,
	query string,
	args ...any,
) ([]*allocationDomain.Allocation, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list allocations")
	}
	defer rows.Close()

	allocations := make([]*allocationDomain.Allocation, 0)
	for rows.Next() {
		allocation, err := scanPostgreSQLAllocation(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan allocation")
		}
		allocations = append(allocations, allocation)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate allocations")
	}

	return allocations, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPostgreSQLAllocation scans an allocation row unmarshalling the scope JSON.
func scanPostgreSQLAllocation(row rowScanner) (*allocationDomain.Allocation, error) {
	var allocation allocationDomain.Allocation
	var scopeJSON []byte

	err := row.Scan(
		&allocation.ID,
		&allocation.KeyID,
		&allocation.ConsumerType,
		&allocation.ConsumerID,
		&scopeJSON,
		&allocation.CreatedAt,
		&allocation.RevokedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scopeJSON, &allocation.Scope); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal allocation scope")
	}

	return &allocation, nil
}

// NewPostgreSQLAllocationRepository creates a new PostgreSQL Allocation repository instance.
func NewPostgreSQLAllocationRepository(db *sql.DB) *PostgreSQLAllocationRepository {
	return &PostgreSQLAllocationRepository{db: db}
}
