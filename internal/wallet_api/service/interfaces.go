package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetdesk-driver-wallet/internal/domain/request"
	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

// WalletService owns the sole balance mutation primitive and the read-side
// wallet operations
type WalletService interface {
	// ApplyDelta atomically appends a ledger entry and updates the cached
	// balance inside one unit of work. Returns ErrInsufficientBalance when
	// the delta would drive the balance negative; nothing is written then.
	ApplyDelta(ctx context.Context, draft wallet.Draft) (*wallet.Transaction, error)

	// Adjust performs an administrator credit or debit without a request.
	// dedupKey, when supplied, makes retries idempotent.
	Adjust(ctx context.Context, driverID uuid.UUID, direction Direction, amount int64, reasonCode, remark, dedupKey string, actor wallet.Actor) (*wallet.Transaction, error)

	// GetBalance returns the cached balance, 0 for an unknown driver
	GetBalance(ctx context.Context, driverID uuid.UUID) (int64, error)

	// ListTransactions returns a page of ledger entries with the total count
	ListTransactions(ctx context.Context, driverID uuid.UUID, page, perPage int, newestFirst bool) ([]*wallet.Transaction, int64, error)

	// Audit recomputes the ledger sum and compares it with the cached
	// balance. A mismatch is a storage bug, never a business condition.
	Audit(ctx context.Context, driverID uuid.UUID) (*AuditReport, error)
}

// DeltaApplier is the seam the approval service uses to apply a settlement
// inside its own transaction
type DeltaApplier interface {
	ApplyDeltaTx(ctx context.Context, tx pgx.Tx, draft wallet.Draft) (*wallet.Transaction, error)
}

// ApprovalService drives the request state machine
type ApprovalService interface {
	// CreateRequest stores a new pending add/withdraw request
	CreateRequest(ctx context.Context, driverID uuid.UUID, reqType request.Type, amount int64, reason string) (*request.Request, error)

	// Decide approves or rejects a pending request exactly once. A repeat
	// call returns ErrAlreadyResolved without touching the ledger.
	Decide(ctx context.Context, requestID uuid.UUID, decision request.Decision, remark string, settlement *wallet.Settlement, actor wallet.Actor) (*request.Request, error)

	// GetRequest returns a request by id
	GetRequest(ctx context.Context, requestID uuid.UUID) (*request.Request, error)

	// ListPending returns the admin queue with its total count
	ListPending(ctx context.Context, page, perPage int) ([]*request.Request, int64, error)
}

// Direction of a direct adjustment
type Direction string

const (
	DirectionAdd      Direction = "ADD"
	DirectionSubtract Direction = "SUBTRACT"
)

// AuditReport compares the cached balance with the ledger sum
type AuditReport struct {
	DriverID      uuid.UUID `json:"driver_id"`
	CachedBalance int64     `json:"cached_balance"`
	LedgerSum     int64     `json:"ledger_sum"`
	Consistent    bool      `json:"consistent"`
}
