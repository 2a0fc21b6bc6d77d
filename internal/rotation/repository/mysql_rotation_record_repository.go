package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
	rotationDomain "github.com/allisson/credentials/internal/rotation/domain"
)

// MySQLRotationRecordRepository implements RotationRecord persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLRotationRecordRepository struct {
	db *sql.DB
}

// Create inserts a new rotation record into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLRotationRecordRepository) Create(
	ctx context.Context,
	record *rotationDomain.RotationRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal rotation record id")
	}
	keyID, err := record.KeyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `INSERT INTO rotation_records (id, key_id, old_version, new_version, initiated_at, grace_expires_at, completed_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		keyID,
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
func (m *MySQLRotationRecordRepository) GetOpenForKey(
	ctx context.Context,
	keyID uuid.UUID,
) (*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, m.db)

	binaryKeyID, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `SELECT id, key_id, old_version, new_version, initiated_at, grace_expires_at, completed_at
			  FROM rotation_records
			  WHERE key_id = ? AND completed_at IS NULL`

	record, err := scanMySQLRotationRecord(querier.QueryRowContext(ctx, query, binaryKeyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rotationDomain.ErrRotationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get open rotation record")
	}
	return record, nil
}

// Complete closes a rotation record. Returns ErrRotationNotFound when the
// record doesn't exist or is already closed.
func (m *MySQLRotationRecordRepository) Complete(
	ctx context.Context,
	id uuid.UUID,
	completedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal rotation record id")
	}

	query := `UPDATE rotation_records
			  SET completed_at = ?
			  WHERE id = ? AND completed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, completedAt, binaryID)
	if err != nil {
		return apperrors.Wrap(err, "failed to complete rotation record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return rotationDomain.ErrRotationNotFound
	}
	return nil
}

// ListDue retrieves open rotation records whose grace window has elapsed,
// oldest deadline first.
func (m *MySQLRotationRecordRepository) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*rotationDomain.RotationRecord, error) {
	query := `SELECT id, key_id, old_version, new_version, initiated_at, grace_expires_at, completed_at
			  FROM rotation_records
			  WHERE completed_at IS NULL AND grace_expires_at <= ?
			  ORDER BY grace_expires_at ASC
			  LIMIT ?`

	return m.listRotationRecords(ctx, query, now, limit)
}

// ListForKey retrieves the rotation history of a credential in creation order.
func (m *MySQLRotationRecordRepository) ListForKey(
	ctx context.Context,
	keyID uuid.UUID,
	offset, limit int,
) ([]*rotationDomain.RotationRecord, error) {
	binaryKeyID, err := keyID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key id")
	}

	query := `SELECT id, key_id, old_version, new_version, initiated_at, grace_expires_at, completed_at
			  FROM rotation_records
			  WHERE key_id = ?
			  ORDER BY id ASC
			  LIMIT ? OFFSET ?`

	return m.listRotationRecords(ctx, query, binaryKeyID, limit, offset)
}

// listRotationRecords runs a list query and scans the result rows.
func (m *MySQLRotationRecordRepository) listRotationRecords(
	ctx context.Context,
	query string,
	args ...any,
) ([]*rotationDomain.RotationRecord, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list rotation records")
	}
	defer rows.Close()

	records := make([]*rotationDomain.RotationRecord, 0)
	for rows.Next() {
		record, err := scanMySQLRotationRecord(rows)
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

// scanMySQLRotationRecord scans a rotation record row converting the
// BINARY(16) ids back into uuid.UUIDs.
func scanMySQLRotationRecord(row rowScanner) (*rotationDomain.RotationRecord, error) {
	var record rotationDomain.RotationRecord
	var binaryID, binaryKeyID []byte

	err := row.Scan(
		&binaryID,
		&binaryKeyID,
		&record.OldVersion,
		&record.NewVersion,
		&record.InitiatedAt,
		&record.GraceExpiresAt,
		&record.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ID, err = uuid.FromBytes(binaryID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse rotation record id")
	}
	record.KeyID, err = uuid.FromBytes(binaryKeyID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse key id")
	}

	return &record, nil
}

// NewMySQLRotationRecordRepository creates a new MySQL rotation record repository instance.
func NewMySQLRotationRecordRepository(db *sql.DB) *MySQLRotationRecordRepository {
	return &MySQLRotationRecordRepository{db: db}
}
