package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fleetdesk-driver-wallet/internal/domain/outbox"
	"github.com/fleetdesk-driver-wallet/internal/platform/messaging/producers"
)

// EventPublisher pushes a drained outbox message onto the event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher on top of a Kafka producer.
// The outbox row is only marked PROCESSED after the broker confirms the
// write, so at-least-once delivery holds across poller crashes.
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes the message payload keyed by driver so per-driver
// ordering survives partitioning
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.LedgerEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal ledger event from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		// A payload that cannot be decoded will never succeed on retry.
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	p.logger.Info("Attempting to publish outbox message to event stream",
		"outbox_id", message.ID, "transaction_id", message.TransactionID,
	)

	if err := p.producer.Publish(ctx, message.DriverID.String(), event); err != nil {
		return fmt.Errorf("failed to publish ledger event for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	p.logger.Info("Outbox message successfully published and marked as PROCESSED",
		"outbox_id", message.ID, "transaction_id", message.TransactionID,
	)
	return nil
}
