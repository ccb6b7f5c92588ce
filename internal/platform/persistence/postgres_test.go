package persistence

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDB_Pool(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	// Using nil pool since pgxpool requires real DB connection
	var nilPool *pgxpool.Pool
	db := &PostgresDB{
		pool:   nilPool,
		logger: logger,
	}
	assert.Equal(t, nilPool, db.Pool(), "Pool() should return the initialized pool")
}

func TestExecuteTx(t *testing.T) {
	ctx := context.Background()

	t.Run("CommitsOnSuccess", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		called := false
		err = ExecuteTx(ctx, mock, func(tx pgx.Tx) error {
			called = true
			return nil
		})
		assert.NoError(t, err)
		assert.True(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackOnError", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		fnErr := errors.New("unit of work failed")
		err = ExecuteTx(ctx, mock, func(tx pgx.Tx) error {
			return fnErr
		})
		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ReturnsBeginError", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		err = ExecuteTx(ctx, mock, func(tx pgx.Tx) error {
			t.Fatal("fn should not run when Begin fails")
			return nil
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
