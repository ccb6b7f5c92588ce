package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// Message stores a committed ledger event for reliable publishing. It is
// written in the same database transaction as the ledger entry so a crash
// can never produce a committed transaction without its event, or an event
// without its transaction.
type Message struct {
	ID            int64           `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	DriverID      uuid.UUID       `json:"driver_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a ledger event into a pending outbox message
func NewMessage(event *wallet.LedgerEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: event.Transaction.ID,
		DriverID:      event.Transaction.DriverID,
		Payload:       payload,
		Status:        StatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

// LedgerEvent extracts the event from the payload
func (m *Message) LedgerEvent() (*wallet.LedgerEvent, error) {
	var event wallet.LedgerEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}
