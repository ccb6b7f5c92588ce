package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetdesk-driver-wallet/internal/domain/request"
	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
	"github.com/fleetdesk-driver-wallet/internal/platform/persistence"
)

// ApprovalServiceImpl implements the ApprovalService interface. A decision,
// its ledger settlement, and the request status update share one database
// transaction: a crash can never leave an approved-looking request without
// a ledger entry, or a ledger entry without a resolved request.
type ApprovalServiceImpl struct {
	db          persistence.TxBeginner
	requestRepo request.Repository
	applier     DeltaApplier
	logger      *slog.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	logger *slog.Logger,
	db persistence.TxBeginner,
	requestRepo request.Repository,
	applier DeltaApplier,
) ApprovalService {
	return &ApprovalServiceImpl{
		db:          db,
		requestRepo: requestRepo,
		applier:     applier,
		logger:      logger,
	}
}

// CreateRequest stores a new pending add/withdraw request. Creation does not
// touch the wallet; funds only move on approval.
func (s *ApprovalServiceImpl) CreateRequest(ctx context.Context, driverID uuid.UUID, reqType request.Type, amount int64, reason string) (*request.Request, error) {
	req, err := request.New(driverID, reqType, amount, reason)
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Wallet request created",
		"request_id", req.ID.String(),
		"driver_id", driverID.String(),
		"type", string(reqType),
		"amount", amount,
	)

	return req, nil
}

// Decide approves or rejects a pending request exactly once
func (s *ApprovalServiceImpl) Decide(ctx context.Context, requestID uuid.UUID, decision request.Decision, remark string, settlement *wallet.Settlement, actor wallet.Actor) (*request.Request, error) {
	if decision != request.DecisionApproved && decision != request.DecisionRejected {
		return nil, request.ErrInvalidDecision
	}
	if remark == "" {
		return nil, wallet.ErrRemarkRequired
	}

	var resolved *request.Request
	err := persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		requestRepoTx := s.requestRepo.WithTx(tx)

		// The row lock serializes concurrent decisions on the same request;
		// the pending check after it makes retries idempotent.
		req, err := requestRepoTx.LockForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return request.ErrAlreadyResolved{RequestID: req.ID, Status: req.Status}
		}

		now := time.Now()
		if decision == request.DecisionRejected {
			if err := req.Reject(remark, actor, now); err != nil {
				return err
			}
		} else {
			if req.Type == request.TypeWithdraw {
				if settlement == nil {
					return wallet.ErrSettlementRequired
				}
				if err := settlement.Validate(); err != nil {
					return err
				}
			}

			// An InsufficientBalance from the applier aborts the whole
			// decision: the request stays pending, nothing is recorded.
			txn, err := s.applier.ApplyDeltaTx(ctx, tx, wallet.Draft{
				DriverID:         req.DriverID,
				Amount:           req.SignedAmount(),
				Kind:             wallet.KindRequestSettlement,
				Reason:           settlementReason(req),
				Remark:           remark,
				RelatedRequestID: &req.ID,
				Settlement:       settlement,
				Actor:            actor,
			})
			if err != nil {
				return err
			}

			if err := req.Approve(remark, settlement, txn.ID, actor, now); err != nil {
				return err
			}
		}

		if err := requestRepoTx.Resolve(ctx, req); err != nil {
			return err
		}

		resolved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Wallet request resolved",
		"request_id", resolved.ID.String(),
		"driver_id", resolved.DriverID.String(),
		"status", string(resolved.Status),
		"resolved_by", actor.ID,
	)

	return resolved, nil
}

// GetRequest returns a request by id
func (s *ApprovalServiceImpl) GetRequest(ctx context.Context, requestID uuid.UUID) (*request.Request, error) {
	return s.requestRepo.GetByID(ctx, requestID)
}

// ListPending returns the admin queue with its total count
func (s *ApprovalServiceImpl) ListPending(ctx context.Context, page, perPage int) ([]*request.Request, int64, error) {
	offset := (page - 1) * perPage

	reqs, err := s.requestRepo.ListPending(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.requestRepo.CountPending(ctx)
	if err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

// settlementReason picks the ledger reason for an approved request. The
// driver-supplied text stays on the request; the ledger carries a stable
// code per direction unless the request named one.
func settlementReason(req *request.Request) string {
	if req.Reason != "" {
		return req.Reason
	}
	if req.Type == request.TypeWithdraw {
		return wallet.ReasonWithdrawal
	}
	return wallet.ReasonManualCredit
}
