package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
	"github.com/fleetdesk-driver-wallet/internal/ledger_archiver/service"
	"github.com/fleetdesk-driver-wallet/internal/platform/messaging/producers"
)

// LedgerEventHandler handles incoming ledger event messages from Kafka
type LedgerEventHandler struct {
	archiveService service.ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewLedgerEventHandler creates a new handler
func NewLedgerEventHandler(
	logger *slog.Logger,
	archiveService service.ArchiveService,
	producer producers.DeadLetterPublisher,
) *LedgerEventHandler {
	return &LedgerEventHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes Kafka messages
func (h *LedgerEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event wallet.LedgerEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal ledger event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	h.logger.Info("Received ledger event for archiving",
		"transaction_id", event.Transaction.ID.String(),
		"driver_id", event.Transaction.DriverID.String(),
		"kind", string(event.Transaction.Kind),
		"amount", event.Transaction.Amount,
	)

	if err := h.archiveService.ArchiveEvent(ctx, &event); err != nil {
		h.logger.Error("Failed to archive ledger event",
			"transaction_id", event.Transaction.ID.String(),
			"driver_id", event.Transaction.DriverID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving ledger event %s failed: %w", event.Transaction.ID.String(), err)
	}

	h.logger.Info("Successfully archived ledger event", "transaction_id", event.Transaction.ID.String())
	return nil
}
