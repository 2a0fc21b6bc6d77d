package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/credentials/internal/authz/domain"
	"github.com/allisson/credentials/internal/database"
	apperrors "github.com/allisson/credentials/internal/errors"
)

// MySQLTokenRepository implements Token persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new Token into the MySQL database.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *authzDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	principalID, err := token.PrincipalID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal principal id")
	}

	query := `INSERT INTO tokens (id, token_hash, principal_id, expires_at, revoked_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.TokenHash,
		principalID,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// GetByTokenHash retrieves a Token by its lookup hash from the MySQL database.
func (m *MySQLTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authzDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, token_hash, principal_id, expires_at, revoked_at, created_at
			  FROM tokens WHERE token_hash = ?`

	var token authzDomain.Token
	var binaryID []byte
	var binaryPrincipalID []byte

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&binaryID,
		&token.TokenHash,
		&binaryPrincipalID,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}

	id, err := uuid.FromBytes(binaryID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	token.ID = id

	principalID, err := uuid.FromBytes(binaryPrincipalID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal principal id")
	}
	token.PrincipalID = principalID

	return &token, nil
}

// NewMySQLTokenRepository creates a new MySQL Token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}
