package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
	"github.com/fleetdesk-driver-wallet/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

// LedgerRepository implements the wallet.LedgerRepository interface for
// PostgreSQL. The wallet_transactions table is append-only: this repository
// exposes no update or delete operation by design of the schema.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.LedgerRepository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *LedgerRepository) WithTx(tx pgx.Tx) wallet.LedgerRepository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append persists the transaction and fills in its insertion sequence.
// Returns ErrDuplicateTransaction when the id or dedup key already exists.
func (r *LedgerRepository) Append(ctx context.Context, txn *wallet.Transaction) error {
	query := `
		INSERT INTO wallet_transactions
			(id, driver_id, amount, kind, reason, remark, related_request_id,
			 settlement_method, settlement_txn_id, dedup_key, created_at,
			 created_by_id, created_by_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq
	`

	var settlementMethod, settlementTxnID *string
	if txn.Settlement != nil {
		method := string(txn.Settlement.PaymentMethod)
		settlementMethod = &method
		settlementTxnID = &txn.Settlement.ExternalTxnID
	}

	var dedupKey *string
	if txn.DedupKey != "" {
		dedupKey = &txn.DedupKey
	}

	err := r.querier.QueryRow(ctx, query,
		txn.ID,
		txn.DriverID,
		txn.Amount,
		txn.Kind,
		txn.Reason,
		txn.Remark,
		txn.RelatedRequestID,
		settlementMethod,
		settlementTxnID,
		dedupKey,
		txn.CreatedAt,
		txn.CreatedBy.ID,
		txn.CreatedBy.Role,
	).Scan(&txn.Seq)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return wallet.ErrDuplicateTransaction{TransactionID: txn.ID}
		}
		r.logger.Error("Failed to append wallet transaction",
			"transaction_id", txn.ID.String(),
			"driver_id", txn.DriverID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger entry by its transaction id
func (r *LedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Transaction, error) {
	query := selectTransactionColumns + ` WHERE id = $1`

	txn, err := r.scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get wallet transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet transaction: %w", err)
	}

	return txn, nil
}

// GetByDedupKey retrieves a ledger entry by its dedup key. Returns nil when
// no transaction carries the key, enabling idempotent adjustment retries.
func (r *LedgerRepository) GetByDedupKey(ctx context.Context, dedupKey string) (*wallet.Transaction, error) {
	if dedupKey == "" {
		return nil, errors.New("dedup key cannot be empty")
	}

	query := selectTransactionColumns + ` WHERE dedup_key = $1`

	txn, err := r.scanTransaction(r.querier.QueryRow(ctx, query, dedupKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get wallet transaction by dedup key", "dedup_key", dedupKey, "error", err)
		return nil, fmt.Errorf("failed to get wallet transaction by dedup key: %w", err)
	}

	return txn, nil
}

// ListByDriver retrieves a page of ledger entries for a driver in stable
// chronological order. Ordering is by the insertion sequence, never by
// wall-clock alone, since clocks may collide.
func (r *LedgerRepository) ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int, newestFirst bool) ([]*wallet.Transaction, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	query := selectTransactionColumns + fmt.Sprintf(`
		WHERE driver_id = $1
		ORDER BY seq %s
		LIMIT $2 OFFSET $3
	`, order)

	rows, err := r.querier.Query(ctx, query, driverID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list wallet transactions", "driver_id", driverID.String(), "error", err)
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []*wallet.Transaction
	for rows.Next() {
		txn, err := r.scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan wallet transaction", "error", err)
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over wallet transactions", "error", err)
		return nil, fmt.Errorf("error iterating over wallet transactions: %w", err)
	}

	return txns, nil
}

// CountByDriver counts the total number of ledger entries for a driver
func (r *LedgerRepository) CountByDriver(ctx context.Context, driverID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM wallet_transactions WHERE driver_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, driverID).Scan(&count); err != nil {
		r.logger.Error("Failed to count wallet transactions", "driver_id", driverID.String(), "error", err)
		return 0, fmt.Errorf("failed to count wallet transactions: %w", err)
	}

	return count, nil
}

// SumByDriver recomputes the authoritative balance by replaying the ledger.
// The wallets cache must always agree with this value.
func (r *LedgerRepository) SumByDriver(ctx context.Context, driverID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE driver_id = $1`

	var sum int64
	if err := r.querier.QueryRow(ctx, query, driverID).Scan(&sum); err != nil {
		r.logger.Error("Failed to sum wallet transactions", "driver_id", driverID.String(), "error", err)
		return 0, fmt.Errorf("failed to sum wallet transactions: %w", err)
	}

	return sum, nil
}

const selectTransactionColumns = `
	SELECT seq, id, driver_id, amount, kind, reason, remark, related_request_id,
	       settlement_method, settlement_txn_id, dedup_key, created_at,
	       created_by_id, created_by_role
	FROM wallet_transactions`

func (r *LedgerRepository) scanTransaction(row pgx.Row) (*wallet.Transaction, error) {
	var txn wallet.Transaction
	var remark, settlementMethod, settlementTxnID, dedupKey *string

	err := row.Scan(
		&txn.Seq,
		&txn.ID,
		&txn.DriverID,
		&txn.Amount,
		&txn.Kind,
		&txn.Reason,
		&remark,
		&txn.RelatedRequestID,
		&settlementMethod,
		&settlementTxnID,
		&dedupKey,
		&txn.CreatedAt,
		&txn.CreatedBy.ID,
		&txn.CreatedBy.Role,
	)
	if err != nil {
		return nil, err
	}

	if remark != nil {
		txn.Remark = *remark
	}
	if dedupKey != nil {
		txn.DedupKey = *dedupKey
	}
	if settlementMethod != nil && settlementTxnID != nil {
		txn.Settlement = &wallet.Settlement{
			PaymentMethod: wallet.PaymentMethod(*settlementMethod),
			ExternalTxnID: *settlementTxnID,
		}
	}

	return &txn, nil
}
