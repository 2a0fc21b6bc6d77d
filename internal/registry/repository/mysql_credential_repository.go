package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
	registryDomain "github.com/allisson/credentials/internal/registry/domain"
)

// MySQLCredentialRepository implements Credential persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new credential into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLCredentialRepository) Create(
	ctx context.Context,
	credential *registryDomain.Credential,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `INSERT INTO credentials (id, name, system_name, system_type, environment, status, key_ref,
			  current_version, created_at, last_used_at, last_rotated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		credential.Name,
		credential.SystemName,
		credential.SystemType,
		credential.Environment,
		string(credential.Status),
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
func (m *MySQLCredentialRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `SELECT id, name, system_name, system_type, environment, status, key_ref,
			  current_version, created_at, last_used_at, last_rotated_at
			  FROM credentials
			  WHERE id = ?`

	credential, err := scanMySQLCredential(querier.QueryRowContext(ctx, query, binaryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}

	return credential, nil
}

// List retrieves credentials matching the filter in creation order.
func (m *MySQLCredentialRepository) List(
	ctx context.Context,
	filter registryDomain.Filter,
	offset, limit int,
) ([]*registryDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, system_name, system_type, environment, status, key_ref,
			  current_version, created_at, last_used_at, last_rotated_at
			  FROM credentials
			  WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Environment != "" {
		query += ` AND environment = ?`
		args = append(args, filter.Environment)
	}
	if filter.SystemType != "" {
		query += ` AND system_type = ?`
		args = append(args, filter.SystemType)
	}

	query += ` ORDER BY id ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer rows.Close()

	credentials := make([]*registryDomain.Credential, 0)
	for rows.Next() {
		credential, err := scanMySQLCredential(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}
		credentials = append(credentials, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}

	return credentials, nil
}

// UpdateStatus transitions a credential from one status to another with an
// optimistic check on the expected current status.
func (m *MySQLCredentialRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to registryDomain.Status,
) error {
	querier := database.GetTx(ctx, m.db)

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `UPDATE credentials
			  SET status = ?
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, string(to), binaryID, string(from))
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
func (m *MySQLCredentialRepository) CompleteRotation(
	ctx context.Context,
	id uuid.UUID,
	newVersion uint,
	rotatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	binaryID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `UPDATE credentials
			  SET status = ?, current_version = ?, last_rotated_at = ?
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(registryDomain.StatusDeprecated),
		newVersion,
		rotatedAt,
		binaryID,
		string(registryDomain.StatusRotating),
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

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMySQLCredential scans a credential row converting the BINARY(16) id back
// into a uuid.UUID.
func scanMySQLCredential(row rowScanner) (*registryDomain.Credential, error) {
	var credential registryDomain.Credential
	var binaryID []byte
	var status string

	err := row.Scan(
		&binaryID,
		&credential.Name,
		&credential.SystemName,
		&credential.SystemType,
		&credential.Environment,
		&status,
		&credential.KeyRef,
		&credential.CurrentVersion,
		&credential.CreatedAt,
		&credential.LastUsedAt,
		&credential.LastRotatedAt,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.FromBytes(binaryID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse credential id")
	}
	credential.ID = id
	credential.Status = registryDomain.Status(status)

	return &credential, nil
}

// NewMySQLCredentialRepository creates a new MySQL Credential repository instance.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
