package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetdesk-driver-wallet/internal/domain/request"
	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
	"github.com/fleetdesk-driver-wallet/internal/platform/persistence"
)

// RequestRepository implements the request.Repository interface for PostgreSQL
type RequestRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRequestRepository creates a new PostgreSQL wallet request repository
func NewRequestRepository(logger *slog.Logger, db *persistence.PostgresDB) request.Repository {
	return &RequestRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *RequestRepository) WithTx(tx pgx.Tx) request.Repository {
	return &RequestRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new pending wallet request
func (r *RequestRepository) Create(ctx context.Context, req *request.Request) error {
	query := `
		INSERT INTO wallet_requests (id, driver_id, type, amount, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		req.ID,
		req.DriverID,
		req.Type,
		req.Amount,
		req.Reason,
		req.Status,
		req.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create wallet request", "id", req.ID.String(), "error", err)
		return fmt.Errorf("failed to create wallet request: %w", err)
	}

	return nil
}

// GetByID retrieves a wallet request by its id
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	query := selectRequestColumns + ` WHERE id = $1`

	req, err := r.scanRequest(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, request.ErrRequestNotFound{RequestID: id}
		}
		r.logger.Error("Failed to get wallet request", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet request: %w", err)
	}

	return req, nil
}

// LockForUpdate loads the request under a row lock. Two administrators
// deciding the same request serialize here; the loser sees the resolved
// status and fails with ErrAlreadyResolved.
func (r *RequestRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	query := selectRequestColumns + ` WHERE id = $1 FOR UPDATE`

	req, err := r.scanRequest(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, request.ErrRequestNotFound{RequestID: id}
		}
		r.logger.Error("Failed to lock wallet request for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock wallet request for update: %w", err)
	}

	return req, nil
}

// Resolve persists the terminal status and resolution fields. The WHERE
// clause only matches rows still in PENDING, so a concurrent resolution
// surfaces as ErrAlreadyResolved instead of a silent double-apply.
func (r *RequestRepository) Resolve(ctx context.Context, req *request.Request) error {
	query := `
		UPDATE wallet_requests
		SET status = $1, remark = $2, settlement_method = $3, settlement_txn_id = $4,
		    transaction_id = $5, resolved_at = $6, resolved_by_id = $7, resolved_by_role = $8
		WHERE id = $9 AND status = $10
	`

	var settlementMethod, settlementTxnID *string
	if req.Settlement != nil {
		method := string(req.Settlement.PaymentMethod)
		settlementMethod = &method
		settlementTxnID = &req.Settlement.ExternalTxnID
	}

	var resolvedByID, resolvedByRole *string
	if req.ResolvedBy != nil {
		resolvedByID = &req.ResolvedBy.ID
		resolvedByRole = &req.ResolvedBy.Role
	}

	result, err := r.querier.Exec(ctx, query,
		req.Status,
		req.Remark,
		settlementMethod,
		settlementTxnID,
		req.TransactionID,
		req.ResolvedAt,
		resolvedByID,
		resolvedByRole,
		req.ID,
		request.StatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to resolve wallet request", "id", req.ID.String(), "error", err)
		return fmt.Errorf("failed to resolve wallet request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return request.ErrAlreadyResolved{RequestID: req.ID, Status: req.Status}
	}

	return nil
}

// ListPending retrieves pending requests oldest-first for the admin queue
func (r *RequestRepository) ListPending(ctx context.Context, limit, offset int) ([]*request.Request, error) {
	query := selectRequestColumns + `
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, request.StatusPending, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list pending wallet requests", "error", err)
		return nil, fmt.Errorf("failed to list pending wallet requests: %w", err)
	}
	defer rows.Close()

	var reqs []*request.Request
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			r.logger.Error("Failed to scan wallet request", "error", err)
			return nil, fmt.Errorf("failed to scan wallet request: %w", err)
		}
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over wallet requests", "error", err)
		return nil, fmt.Errorf("error iterating over wallet requests: %w", err)
	}

	return reqs, nil
}

// CountPending counts requests still awaiting a decision
func (r *RequestRepository) CountPending(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM wallet_requests WHERE status = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, request.StatusPending).Scan(&count); err != nil {
		r.logger.Error("Failed to count pending wallet requests", "error", err)
		return 0, fmt.Errorf("failed to count pending wallet requests: %w", err)
	}

	return count, nil
}

const selectRequestColumns = `
	SELECT id, driver_id, type, amount, reason, status, remark,
	       settlement_method, settlement_txn_id, transaction_id,
	       created_at, resolved_at, resolved_by_id, resolved_by_role
	FROM wallet_requests`

func (r *RequestRepository) scanRequest(row pgx.Row) (*request.Request, error) {
	var req request.Request
	var reason, remark, settlementMethod, settlementTxnID, resolvedByID, resolvedByRole *string

	err := row.Scan(
		&req.ID,
		&req.DriverID,
		&req.Type,
		&req.Amount,
		&reason,
		&req.Status,
		&remark,
		&settlementMethod,
		&settlementTxnID,
		&req.TransactionID,
		&req.CreatedAt,
		&req.ResolvedAt,
		&resolvedByID,
		&resolvedByRole,
	)
	if err != nil {
		return nil, err
	}

	if reason != nil {
		req.Reason = *reason
	}
	if remark != nil {
		req.Remark = *remark
	}
	if settlementMethod != nil && settlementTxnID != nil {
		req.Settlement = &wallet.Settlement{
			PaymentMethod: wallet.PaymentMethod(*settlementMethod),
			ExternalTxnID: *settlementTxnID,
		}
	}
	if resolvedByID != nil && resolvedByRole != nil {
		req.ResolvedBy = &wallet.Actor{ID: *resolvedByID, Role: *resolvedByRole}
	}

	return &req, nil
}
