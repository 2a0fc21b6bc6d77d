// Package repository implements data persistence for audit entries.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16).
// The sequence column is the primary key. Transactional GetLast calls lock the
// chain head until commit so concurrent appenders assign distinct sequence
// numbers; the primary key is the backstop for appends outside a transaction.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	auditDomain "github.com/allisson/credentials/internal/audit/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
)

// auditAppendLockID identifies the advisory lock serializing audit appends.
const auditAppendLockID = int64(0x61756469745f6c67) // "audit_lg"

// PostgreSQLAuditEntryRepository implements AuditEntry persistence for PostgreSQL.
type PostgreSQLAuditEntryRepository struct {
	db *sql.DB
}

// Create inserts a new AuditEntry into the PostgreSQL database. Uses transaction
// support via database.GetTx() so the entry commits atomically with the state
// change it records. Handles nil detail as database NULL.
func (p *PostgreSQLAuditEntryRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	querier := database.GetTx(ctx, p.db)

	var detailJSON []byte
	var err error

	// Handle nil detail as NULL
	if entry.Detail != nil {
		detailJSON, err = json.Marshal(entry.Detail)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit entry detail")
		}
	}

	query := `INSERT INTO audit_entries (sequence, action, subject_id, principal, detail, prev_hash, entry_hash, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		int64(entry.Sequence),
		string(entry.Action),
		entry.SubjectID,
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
// Inside a transaction the read takes an advisory lock held until commit, so
// concurrent appenders in separate transactions see the previous appender's
// entry instead of both reading the same head. Row locks alone cannot cover
// the empty-log case, where there is no head row to lock.
func (p *PostgreSQLAuditEntryRepository) GetLast(ctx context.Context) (*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	if database.InTx(ctx) {
		if _, err := querier.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, auditAppendLockID); err != nil {
			return nil, apperrors.Wrap(err, "failed to lock audit log head")
		}
	}

	query := `SELECT sequence, action, subject_id, principal, detail, prev_hash, entry_hash, created_at
			  FROM audit_entries
			  ORDER BY sequence DESC
			  LIMIT 1
			  FOR UPDATE`

	entry, err := scanPostgreSQLAuditEntry(querier.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrAuditEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get last audit entry")
	}

	return entry, nil
}

// List retrieves audit entries matching the filter, ordered by sequence
// ascending. The filter's AfterSequence cursor is exclusive.
func (p *PostgreSQLAuditEntryRepository) List(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT sequence, action, subject_id, principal, detail, prev_hash, entry_hash, created_at
			  FROM audit_entries
			  WHERE sequence > $1`
	args := []any{int64(filter.AfterSequence)}

	if filter.Action != "" {
		args = append(args, string(filter.Action))
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		query += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}
	if filter.CreatedAtFrom != nil {
		args = append(args, *filter.CreatedAtFrom)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.CreatedAtTo != nil {
		args = append(args, *filter.CreatedAtTo)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY sequence ASC LIMIT $%d", len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	// Initialize empty slice to avoid returning nil for empty results
	entries := make([]*auditDomain.AuditEntry, 0)

	for rows.Next() {
		entry, err := scanPostgreSQLAuditEntry(rows)
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

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLAuditEntry(row rowScanner) (*auditDomain.AuditEntry, error) {
	var entry auditDomain.AuditEntry
	var sequence int64
	var action string
	var detailJSON []byte

	err := row.Scan(
		&sequence,
		&action,
		&entry.SubjectID,
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

	if detailJSON != nil {
		if err := json.Unmarshal(detailJSON, &entry.Detail); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit entry detail: %w", err)
		}
	}

	return &entry, nil
}

// NewPostgreSQLAuditEntryRepository creates a new PostgreSQL AuditEntry repository.
func NewPostgreSQLAuditEntryRepository(db *sql.DB) *PostgreSQLAuditEntryRepository {
	return &PostgreSQLAuditEntryRepository{db: db}
}
