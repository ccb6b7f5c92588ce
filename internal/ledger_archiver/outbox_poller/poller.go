package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetdesk-driver-wallet/internal/config"
	"github.com/fleetdesk-driver-wallet/internal/domain/outbox"
)

// Poller drains pending outbox messages onto the event stream
type Poller struct {
	outboxRepo       outbox.Repository
	eventPublisher   EventPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	eventPublisher EventPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		eventPublisher:   eventPublisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			p.logger.Debug("Outbox poller tick: processing pending messages")
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		p.logger.Debug("No pending outbox messages found.")
		return nil
	}

	p.logger.Info("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		err := p.eventPublisher.PublishEvent(ctx, msg)
		if err != nil {
			p.logger.Error("Failed to publish outbox message",
				"outbox_id", msg.ID, "transaction_id", msg.TransactionID, "current_attempts", msg.Attempts, "error", err,
			)

			if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
				p.logger.Error("Failed to increment attempts for outbox message", "outbox_id", msg.ID, "error", errInc)
				continue
			}

			if msg.Attempts+1 >= p.maxRetryAttempts {
				p.logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
					"outbox_id", msg.ID, "transaction_id", msg.TransactionID, "attempts_made", msg.Attempts+1,
				)
				if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusFailedToPublish); errUpdate != nil {
					p.logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH after max retries", "outbox_id", msg.ID, "error", errUpdate)
				}
			}
			continue
		}
		p.logger.Info("Successfully processed outbox message", "outbox_id", msg.ID, "transaction_id", msg.TransactionID)
	}
	return nil
}
