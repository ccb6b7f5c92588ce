// Package postgres provides PostgreSQL implementations of the domain
// repositories. All balance-affecting writes go through a single database
// transaction held by the service layer; the repositories here only supply
// the individual statements.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
	"github.com/fleetdesk-driver-wallet/internal/platform/persistence"
)

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing atomic operations
// across multiple repository calls
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateIfAbsent lazily creates the wallet row with balance 0. Existing rows
// are left untouched.
func (r *WalletRepository) CreateIfAbsent(ctx context.Context, driverID uuid.UUID) error {
	query := `
		INSERT INTO wallets (driver_id, balance, created_at, updated_at)
		VALUES ($1, 0, NOW(), NOW())
		ON CONFLICT (driver_id) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, query, driverID)
	if err != nil {
		r.logger.Error("Failed to create wallet", "driver_id", driverID.String(), "error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByDriverID retrieves a wallet by driver id
func (r *WalletRepository) GetByDriverID(ctx context.Context, driverID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT driver_id, balance, created_at, updated_at
		FROM wallets
		WHERE driver_id = $1
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, driverID).Scan(
		&w.DriverID,
		&w.Balance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{DriverID: driverID}
		}
		r.logger.Error("Failed to get wallet", "driver_id", driverID.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// LockForUpdate obtains a row-level lock on the wallet and returns its
// current state. Must be used within a transaction; concurrent callers for
// the same driver block here until the holder commits or aborts.
func (r *WalletRepository) LockForUpdate(ctx context.Context, driverID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT driver_id, balance, created_at, updated_at
		FROM wallets
		WHERE driver_id = $1
		FOR UPDATE
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, driverID).Scan(
		&w.DriverID,
		&w.Balance,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{DriverID: driverID}
		}
		r.logger.Error("Failed to lock wallet for update", "driver_id", driverID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock wallet for update: %w", err)
	}

	return &w, nil
}

// UpdateBalance writes the new cached balance. Callers hold the row lock, so
// a missing row here means the wallet was never created.
func (r *WalletRepository) UpdateBalance(ctx context.Context, driverID uuid.UUID, balance int64) error {
	query := `
		UPDATE wallets
		SET balance = $1, updated_at = NOW()
		WHERE driver_id = $2
	`

	result, err := r.querier.Exec(ctx, query, balance, driverID)
	if err != nil {
		r.logger.Error("Failed to update wallet balance", "driver_id", driverID.String(), "error", err)
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrWalletNotFound{DriverID: driverID}
	}

	return nil
}
