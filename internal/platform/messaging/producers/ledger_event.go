package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/fleetdesk-driver-wallet/internal/config"
)

// LedgerEventProducer publishes committed ledger events drained from the
// outbox. Writes are synchronous with RequireAll acks: the poller only marks
// an outbox row processed after the broker has confirmed the event, so a
// committed ledger entry is never silently dropped from the stream.
type LedgerEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewLedgerEventProducer creates the outbox drain producer and ensures the topic exists
func NewLedgerEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*LedgerEventProducer, error) {
	if cfg.LedgerEventTopic == "" {
		return nil, fmt.Errorf("kafka ledger event topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for ledger event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.LedgerEventTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure ledger event topic %s exists: %w", cfg.LedgerEventTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.LedgerEventTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write ledger events", "topic", cfg.LedgerEventTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote ledger events", "topic", cfg.LedgerEventTopic, "count", len(messages))
			}
		},
	}

	return &LedgerEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.LedgerEventTopic,
	}, nil
}

func (p *LedgerEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event value: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish ledger event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published ledger event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *LedgerEventProducer) Close() error {
	p.logger.Info("Closing ledger event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close ledger event kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
