package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
)

// MySQLAuditEntryRepository implements AuditEntry persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLAuditEntryRepository struct {
	db *sql.DB
}

// Create inserts a new AuditEntry into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLAuditEntryRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	querier := database.GetTx(ctx, m.db)

	var detailJSON []byte
	var err error

	if entry.Detail != nil {
		detailJSON, err = json.Marshal(entry.Detail)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit entry detail")
		}
	}

	subjectID, err := entry.SubjectID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal subject id")
	}

	query := `INSERT INTO audit_entries (sequence, action, subject_id, principal, detail, prev_hash, entry_hash, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		int64(entry.Sequence),
		string(entry.Action),
		subjectID,
		entry.Principal,
		detailJSON,
		entry.PrevHash,
		entry.EntryHash,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	return nil
}

// GetLast retrieves the entry with the highest sequence number.
// Returns ErrAuditEntryNotFound when the log is empty.
//
// FOR UPDATE locks the head row (or, on an empty log, the index gap) until the
// surrounding transaction commits, so concurrent appenders in separate
// transactions serialize instead of reading the same head.
func (m *MySQLAuditEntryRepository) GetLast(ctx context.Context) (*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT sequence, action, subject_id, principal, detail, prev_hash, entry_hash, created_at
			  FROM audit_entries
			  ORDER BY sequence DESC
			  LIMIT 1
			  FOR UPDATE`

	entry, err := scanMySQLAuditEntry(querier.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrAuditEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get last audit entry")
	}

	return entry, nil
}

// List retrieves audit entries matching the filter, ordered by sequence ascending.
func (m *MySQLAuditEntryRepository) List(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT sequence, action, subject_id, principal, detail, prev_hash, entry_hash, created_at
			  FROM audit_entries
			  WHERE sequence > ?`
	args := []any{int64(filter.AfterSequence)}

	if filter.Action != "" {
		query += " AND action = ?"
		args = append(args, string(filter.Action))
	}
	if filter.SubjectID != nil {
		subjectID, err := filter.SubjectID.MarshalBinary()
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal subject id")
		}
		query += " AND subject_id = ?"
		args = append(args, subjectID)
	}
	if filter.CreatedAtFrom != nil {
		query += " AND created_at >= ?"
		args = append(args, *filter.CreatedAtFrom)
	}
	if filter.CreatedAtTo != nil {
		query += " AND created_at <= ?"
		args = append(args, *filter.CreatedAtTo)
	}

	query += " ORDER BY sequence ASC LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.AuditEntry, 0)

	for rows.Next() {
		entry, err := scanMySQLAuditEntry(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

func scanMySQLAuditEntry(row rowScanner) (*auditDomain.AuditEntry, error) {
	var entry auditDomain.AuditEntry
	var sequence int64
	var action string
	var subjectID []byte
	var detailJSON []byte

	err := row.Scan(
		&sequence,
		&action,
		&subjectID,
		&entry.Principal,
		&detailJSON,
		&entry.PrevHash,
		&entry.EntryHash,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Sequence = uint64(sequence)
	entry.Action = auditDomain.Action(action)

	parsedID, err := uuid.FromBytes(subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subject id: %w", err)
	}
	entry.SubjectID = parsedID

	if detailJSON != nil {
		if err := json.Unmarshal(detailJSON, &entry.Detail); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit entry detail: %w", err)
		}
	}

	return &entry, nil
}

// NewMySQLAuditEntryRepository creates a new MySQL AuditEntry repository.
func NewMySQLAuditEntryRepository(db *sql.DB) *MySQLAuditEntryRepository {
	return &MySQLAuditEntryRepository{db: db}
}
