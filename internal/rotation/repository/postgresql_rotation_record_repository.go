// Package repository implements rotation record persistence for PostgreSQL
// and MySQL. At most one open record exists per credential; the grace sweep
// scans open records ordered by their grace deadline.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// PostgreSQLRotationRecordRepository implements RotationRecord persistence for PostgreSQL databases.
type PostgreSQLRotationRecordRepository struct {
	db *sql.DB
}

// Create inserts a new rotation record into the PostgreSQL database.
func (p *PostgreSQLRotationRecordRepository) Create(
	ctx context.Context,
	record *rotationDomain.RotationRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO rotation_records (id, key_id, old_version, new_version, initiated_at, grace_expires_at, completed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.KeyID,
		record.OldVersion,
		record.NewVersion,
		record.InitiatedAt,
		record.GraceExpiresAt,
		record.CompletedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create rotation record")
	}
	return nil
}

// GetOpenForKey retrieves the open rotation record for a credential, if any.
func (p *PostgreSQLRotationRecordRepository) GetOpenForKey(
	ctx context.Context,
	keyID uuid.UUID,
) (*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, key_id, old_version, new_version, initiated_at, grace_expires_at, completed_at
			  FROM rotation_records
			  WHERE key_id = $1 AND completed_at IS NULL`

	record, err := scanPostgreSQLRotationRecord(querier.QueryRowContext(ctx, query, keyID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, rotationDomain.ErrRotationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get open rotation record")
	}
	return record, nil
}

// Complete closes a rotation record. Returns ErrRotationNotFound when the
// record doesn't exist or is already closed.
func (p *PostgreSQLRotationRecordRepository) Complete(
	ctx context.Context,
	id uuid.UUID,
	completedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE rotation_records
			  SET completed_at = $1
			  WHERE id = $2 AND completed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, completedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to complete rotation record")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return rotationDomain.ErrRotationNotFound
	}
	return nil
}

// ListDue retrieves open rotation records whose grace window has elapsed,
// oldest deadline first.
func (p *PostgreSQLRotationRecordRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, key_id, old_version, new_version, initiated_at, grace_expires_at, completed_at
			  FROM rotation_records
			  WHERE completed_at IS NULL AND grace_expires_at <= $1
			  ORDER BY grace_expires_at ASC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due rotation records")
	}
	defer rows.Close()

	return collectPostgreSQLRotationRecords(rows)
}

// ListForKey retrieves the rotation history of a credential in creation order.
func (p *PostgreSQLRotationRecordRepository) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, key_id, old_version, new_version, initiated_at, grace_expires_at, completed_at
			  FROM rotation_records
			  WHERE key_id = $1
			  ORDER BY id ASC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, keyID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rotation records")
	}
	defer rows.Close()

	return collectPostgreSQLRotationRecords(rows)
}

func collectPostgreSQLRotationRecords(rows *sql.Rows) ([]*rotationDomain.RotationRecord, error) {
	records := make([]*rotationDomain.RotationRecord, 0)
	for rows.Next() {
		record, err := scanPostgreSQLRotationRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan rotation record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate rotation records")
	}
	return records, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLRotationRecord(row rowScanner) (*rotationDomain.RotationRecord, error) {
	var record rotationDomain.RotationRecord

	err := row.Scan(
		&record.ID,
		&record.KeyID,
		&record.OldVersion,
		&record.NewVersion,
		&record.InitiatedAt,
		&record.GraceExpiresAt,
		&record.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// NewPostgreSQLRotationRecordRepository creates a new PostgreSQL rotation record repository instance.
func NewPostgreSQLRotationRecordRepository(db *sql.DB) *PostgreSQLRotationRecordRepository {
	return &PostgreSQLRotationRecordRepository{db: db}
}
