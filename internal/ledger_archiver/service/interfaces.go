package service

import (
	"context"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

// ArchiveService writes ledger events into the archive read model
type ArchiveService interface {
	ArchiveEvent(ctx context.Context, event *wallet.LedgerEvent) error
}
