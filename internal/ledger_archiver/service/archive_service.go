package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

// ArchiveServiceImpl implements the ArchiveService interface. The event
// stream delivers at least once, so a redelivered event must land exactly
// once in the archive.
type ArchiveServiceImpl struct {
	archiveRepo wallet.ArchiveRepository
	logger      *slog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(logger *slog.Logger, archiveRepo wallet.ArchiveRepository) ArchiveService {
	return &ArchiveServiceImpl{
		archiveRepo: archiveRepo,
		logger:      logger,
	}
}

// ArchiveEvent stores a ledger event, treating duplicates as success
func (s *ArchiveServiceImpl) ArchiveEvent(ctx context.Context, event *wallet.LedgerEvent) error {
	err := s.archiveRepo.Insert(ctx, event)
	if err != nil {
		var duplicate wallet.ErrDuplicateTransaction
		if errors.As(err, &duplicate) {
			s.logger.Info("Ledger event already archived, skipping",
				"transaction_id", event.Transaction.ID.String(),
				"driver_id", event.Transaction.DriverID.String(),
			)
			return nil
		}
		return fmt.Errorf("failed to archive ledger event %s: %w", event.Transaction.ID, err)
	}

	s.logger.Info("Archived ledger event",
		"transaction_id", event.Transaction.ID.String(),
		"driver_id", event.Transaction.DriverID.String(),
		"seq", event.Transaction.Seq,
		"balance_after", event.BalanceAfter,
	)
	return nil
}
