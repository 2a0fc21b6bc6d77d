package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxManager(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	txManager := NewTxManager(db)
	assert.NotNil(t, txManager)
	assert.IsType(t, &sqlTxManager{}, txManager)
}

func TestWithTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)

	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		// Verify transaction is in context
		tx := ctx.Value(txKey{})
		assert.NotNil(t, tx)
		assert.IsType(t, &sql.Tx{}, tx)
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	txManager := NewTxManager(db)

	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})

	assert.Equal(t, assert.AnError, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	t.Run("ReturnsDBWithoutTransaction", func(t *testing.T) {
		querier := GetTx(context.Background(), db)
		assert.Equal(t, Querier(db), querier)
	})

	t.Run("ReturnsTransactionFromContext", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
			querier := GetTx(ctx, db)
			assert.IsType(t, &sql.Tx{}, querier)
			return nil
		})
		assert.NoError(t, err)
	})
}

func TestInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.False(t, InTx(context.Background()))

	mock.ExpectBegin()
	mock.ExpectCommit()

	txManager := NewTxManager(db)
	err = txManager.WithTx(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		return nil
	})
	assert.NoError(t, err)
}
