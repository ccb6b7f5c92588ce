package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines wallet row persistence operations. The wallet row for a
// driver is the single point of serialization for balance changes: LockForUpdate
// must be called inside a transaction before the ledger append.
type Repository interface {
	// CreateIfAbsent lazily creates the wallet row with balance 0
	CreateIfAbsent(ctx context.Context, driverID uuid.UUID) error

	// GetByDriverID returns the wallet or ErrWalletNotFound
	GetByDriverID(ctx context.Context, driverID uuid.UUID) (*Wallet, error)

	// LockForUpdate acquires a row-level lock on the wallet for the duration
	// of the surrounding transaction
	LockForUpdate(ctx context.Context, driverID uuid.UUID) (*Wallet, error)

	// UpdateBalance writes the new cached balance and bumps updated_at
	UpdateBalance(ctx context.Context, driverID uuid.UUID, balance int64) error

	WithTx(tx pgx.Tx) Repository
}

// LedgerRepository manages append-only wallet transaction persistence. Rows
// are never updated or deleted; chronological order is the insertion
// sequence, not wall-clock time.
type LedgerRepository interface {
	// Append persists the transaction and fills in its sequence number
	Append(ctx context.Context, txn *Transaction) error

	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByDedupKey returns nil when no transaction carries the key,
	// enabling idempotent retries of direct adjustments
	GetByDedupKey(ctx context.Context, dedupKey string) (*Transaction, error)

	// ListByDriver returns a page of transactions in stable chronological
	// order; newestFirst flips the sort
	ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int, newestFirst bool) ([]*Transaction, error)

	CountByDriver(ctx context.Context, driverID uuid.UUID) (int64, error)

	// SumByDriver recomputes the authoritative balance from the ledger
	SumByDriver(ctx context.Context, driverID uuid.UUID) (int64, error)

	WithTx(tx pgx.Tx) LedgerRepository
}

// ArchiveRepository stores the read-only copy of the ledger kept in the
// archive database. The archive is rebuildable from the event stream and is
// never the source of truth.
type ArchiveRepository interface {
	Insert(ctx context.Context, event *LedgerEvent) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*LedgerEvent, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*LedgerEvent, error)
	CountByDriver(ctx context.Context, driverID uuid.UUID) (int64, error)
}
