package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetdesk-driver-wallet/internal/domain/outbox"
	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
	"github.com/fleetdesk-driver-wallet/internal/platform/persistence"
)

// WalletServiceImpl implements the WalletService interface. Every balance
// change in the system funnels through ApplyDeltaTx: one locked wallet row,
// one ledger append, one balance write, one outbox insert, one commit.
type WalletServiceImpl struct {
	db         persistence.TxBeginner
	walletRepo wallet.Repository
	ledgerRepo wallet.LedgerRepository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(
	logger *slog.Logger,
	db persistence.TxBeginner,
	walletRepo wallet.Repository,
	ledgerRepo wallet.LedgerRepository,
	outboxRepo outbox.Repository,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		db:         db,
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// ApplyDelta validates the draft and applies it inside its own unit of work
func (s *WalletServiceImpl) ApplyDelta(ctx context.Context, draft wallet.Draft) (*wallet.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	// A retried adjustment with a dedup key must not double-apply. The key
	// column is unique, so the worst case under a race is a duplicate-key
	// failure on append, never a second ledger entry.
	if draft.DedupKey != "" {
		existing, err := s.ledgerRepo.GetByDedupKey(ctx, draft.DedupKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.logger.Info("Found existing transaction for dedup key",
				"dedup_key", draft.DedupKey,
				"transaction_id", existing.ID.String(),
			)
			return existing, nil
		}
	}

	var txn *wallet.Transaction
	err := persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		applied, err := s.ApplyDeltaTx(ctx, tx, draft)
		if err != nil {
			return err
		}
		txn = applied
		return nil
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// ApplyDeltaTx applies the delta inside a caller-owned transaction. The
// sequence is fixed: create-if-absent, lock, check, append, write balance,
// enqueue event. Any failure aborts the whole transaction, so a ledger row
// without a balance update can never be observed.
func (s *WalletServiceImpl) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, draft wallet.Draft) (*wallet.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	walletRepoTx := s.walletRepo.WithTx(tx)
	ledgerRepoTx := s.ledgerRepo.WithTx(tx)
	outboxRepoTx := s.outboxRepo.WithTx(tx)

	if err := walletRepoTx.CreateIfAbsent(ctx, draft.DriverID); err != nil {
		return nil, err
	}

	w, err := walletRepoTx.LockForUpdate(ctx, draft.DriverID)
	if err != nil {
		return nil, err
	}

	if err := w.ApplyDelta(draft.Amount); err != nil {
		var insufficientErr wallet.ErrInsufficientBalance
		if errors.As(err, &insufficientErr) {
			s.logger.Warn("Delta rejected, would drive balance negative",
				"driver_id", draft.DriverID.String(),
				"balance", insufficientErr.Balance,
				"debit", insufficientErr.Debit,
			)
		}
		return nil, err
	}

	txn := draft.NewTransaction()
	if err := ledgerRepoTx.Append(ctx, txn); err != nil {
		return nil, err
	}

	if err := walletRepoTx.UpdateBalance(ctx, draft.DriverID, w.Balance); err != nil {
		return nil, err
	}

	event := &wallet.LedgerEvent{
		Transaction:  *txn,
		BalanceAfter: w.Balance,
		EmittedAt:    time.Now(),
	}
	message, err := outbox.NewMessage(event)
	if err != nil {
		return nil, err
	}
	if err := outboxRepoTx.Create(ctx, message); err != nil {
		return nil, err
	}

	s.logger.Info("Wallet delta applied",
		"driver_id", draft.DriverID.String(),
		"transaction_id", txn.ID.String(),
		"amount", txn.Amount,
		"kind", string(txn.Kind),
		"balance_after", w.Balance,
	)

	return txn, nil
}

// Adjust performs an administrator credit or debit without a request
func (s *WalletServiceImpl) Adjust(ctx context.Context, driverID uuid.UUID, direction Direction, amount int64, reasonCode, remark, dedupKey string, actor wallet.Actor) (*wallet.Transaction, error) {
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}
	if remark == "" {
		return nil, wallet.ErrRemarkRequired
	}

	var signed int64
	switch direction {
	case DirectionAdd:
		signed = amount
	case DirectionSubtract:
		signed = -amount
	default:
		return nil, wallet.ErrInvalidDirection
	}

	return s.ApplyDelta(ctx, wallet.Draft{
		DriverID: driverID,
		Amount:   signed,
		Kind:     wallet.KindDirectAdjustment,
		Reason:   reasonCode,
		Remark:   remark,
		DedupKey: dedupKey,
		Actor:    actor,
	})
}

// GetBalance returns the cached balance, defaulting to 0 for a driver with
// no wallet row yet
func (s *WalletServiceImpl) GetBalance(ctx context.Context, driverID uuid.UUID) (int64, error) {
	w, err := s.walletRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			return 0, nil
		}
		return 0, err
	}
	return w.Balance, nil
}

// ListTransactions returns a page of ledger entries with the total count
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, driverID uuid.UUID, page, perPage int, newestFirst bool) ([]*wallet.Transaction, int64, error) {
	offset := (page - 1) * perPage

	txns, err := s.ledgerRepo.ListByDriver(ctx, driverID, perPage, offset, newestFirst)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByDriver(ctx, driverID)
	if err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

// Audit recomputes the ledger sum and compares it with the cached balance
func (s *WalletServiceImpl) Audit(ctx context.Context, driverID uuid.UUID) (*AuditReport, error) {
	var cached int64
	w, err := s.walletRepo.GetByDriverID(ctx, driverID)
	if err != nil {
		if !errors.Is(err, wallet.ErrWalletNotFound{}) {
			return nil, err
		}
	} else {
		cached = w.Balance
	}

	sum, err := s.ledgerRepo.SumByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{
		DriverID:      driverID,
		CachedBalance: cached,
		LedgerSum:     sum,
		Consistent:    cached == sum,
	}

	if !report.Consistent {
		s.logger.Error("Wallet balance does not match ledger sum",
			"driver_id", driverID.String(),
			"cached_balance", cached,
			"ledger_sum", sum,
		)
	}

	return report, nil
}
