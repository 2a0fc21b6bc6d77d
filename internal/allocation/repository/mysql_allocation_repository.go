package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	allocationDomain "github.com/allisson/credentials/internal/allocation/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
)

// MySQLAllocationRepository implements Allocation persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAllocationRepository struct {
	db *sql.DB
}

// Create inserts a new allocation into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLAllocationRepository) Create(
	ctx context.Context,
	allocation *allocationDomain.Allocation,
) error {
	querier := database.GetTx(ctx, m.db)

	scopeJSON, err := json.Marshal(allocation.Scope)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allocation scope")
	}

	id, err := allocation.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allocation id")
	}
	keyID, err := allocation.KeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `INSERT INTO allocations (id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		keyID,
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
func (m *MySQLAllocationRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*allocationDomain.Allocation, error) {
	querier := database.GetTx(ctx, m.db)

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal allocation id")
	}

	query := `SELECT id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at
			  FROM allocations
			  WHERE id = ?`

	allocation, err := scanMySQLAllocation(querier.QueryRowContext(ctx, query, binaryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, allocationDomain.ErrAllocationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get allocation")
	}

	return allocation, nil
}

// GetActiveByKeyAndConsumer retrieves the active allocation for a
// (key, consumer) pair. At most one exists.
func (m *MySQLAllocationRepository) GetActiveByKeyAndConsumer(
	ctx context.Context,
	keyID uuid.UUID,
	consumerID string,
) (*allocationDomain.Allocation, error) {
	querier := database.GetTx(ctx, m.db)

	binaryKeyID, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `SELECT id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at
			  FROM allocations
			  WHERE key_id = ? AND consumer_id = ? AND revoked_at IS NULL`

	allocation, err := scanMySQLAllocation(querier.QueryRowContext(ctx, query, binaryKeyID, consumerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, allocationDomain.ErrAllocationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active allocation")
	}

	return allocation, nil
}

// UpdateScope replaces the scope of an active allocation.
func (m *MySQLAllocationRepository) UpdateScope(
	ctx context.Context,
	id uuid.UUID,
	scope allocationDomain.Scope,
) error {
	querier := database.GetTx(ctx, m.db)

	scopeJSON, err := json.Marshal(scope)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allocation scope")
	}

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allocation id")
	}

	query := `UPDATE allocations
			  SET scope = ?
			  WHERE id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, scopeJSON, binaryID)
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
func (m *MySQLAllocationRepository) Revoke(
	ctx context.Context,
	id uuid.UUID,
	revokedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal allocation id")
	}

	query := `UPDATE allocations
			  SET revoked_at = ?
			  WHERE id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, query, revokedAt, binaryID)
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
func (m *MySQLAllocationRepository) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	binaryKeyID, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `SELECT id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at
			  FROM allocations
			  WHERE key_id = ? AND revoked_at IS NULL
			  ORDER BY id ASC
			  LIMIT ? OFFSET ?`

	return m.listAllocations(ctx, query, binaryKeyID, limit, offset)
}

// ListForConsumer retrieves active allocations for a consumer in creation order.
func (m *MySQLAllocationRepository) ListForConsumer(
	ctx context.Context,
	consumerID string,
	offset, limit int,
) ([]*allocationDomain.Allocation, error) {
	query := `SELECT id, key_id, consumer_type, consumer_id, scope, created_at, revoked_at
			  FROM allocations
			  WHERE consumer_id = ? AND revoked_at IS NULL
			  ORDER BY id ASC
			  LIMIT ? OFFSET ?`

	return m.listAllocations(ctx, query, consumerID, limit, offset)
}

// listAllocations runs a list query and scans the result rows.
func (m *MySQLAllocationRepository) listAllocations(
	ctx context.Context,
	query string,
	args ...any,
) ([]*allocationDomain.Allocation, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list allocations")
	}
	defer rows.Close()

	allocations := make([]*allocationDomain.Allocation, 0)
	for rows.Next() {
		allocation, err := scanMySQLAllocation(rows)
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

// scanMySQLAllocation scans an allocation row converting the BINARY(16) ids
// back into uuid.UUIDs and unmarshalling the scope JSON.
func scanMySQLAllocation(row rowScanner) (*allocationDomain.Allocation, error) {
	var allocation allocationDomain.Allocation
	var binaryID, binaryKeyID, scopeJSON []byte

	err := row.Scan(
		&binaryID,
		&binaryKeyID,
		&allocation.ConsumerType,
		&allocation.ConsumerID,
		&scopeJSON,
		&allocation.CreatedAt,
		&allocation.RevokedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.FromBytes(binaryID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse allocation id")
	}
	keyID, err := uuid.FromBytes(binaryKeyID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse key id")
	}
	allocation.ID = id
	allocation.KeyID = keyID

	if err := json.Unmarshal(scopeJSON, &allocation.Scope); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal allocation scope")
	}

	return &allocation, nil
}

// NewMySQLAllocationRepository creates a new MySQL Allocation repository instance.
func NewMySQLAllocationRepository(db *sql.DB) *MySQLAllocationRepository {
	return &MySQLAllocationRepository{db: db}
}
