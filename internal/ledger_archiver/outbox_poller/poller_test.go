package outbox_poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fleetdesk-driver-wallet/internal/config"
	"github.com/fleetdesk-driver-wallet/internal/domain/outbox"
	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

// MockEventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	logger := slog.Default()

	cfg := &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}

	txID := uuid.New()
	driverID := uuid.New()
	event := &wallet.LedgerEvent{
		Transaction: wallet.Transaction{
			ID:       txID,
			DriverID: driverID,
			Amount:   1000,
			Kind:     wallet.KindDirectAdjustment,
		},
		BalanceAfter: 1000,
		EmittedAt:    time.Now(),
	}
	eventJSON, err := json.Marshal(event)
	assert.NoError(t, err)

	message1 := &outbox.Message{
		ID:            1,
		TransactionID: txID,
		DriverID:      driverID,
		Status:        outbox.StatusPending,
		Payload:       eventJSON,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}

	message2 := &outbox.Message{
		ID:            2,
		TransactionID: uuid.New(),
		DriverID:      driverID,
		Status:        outbox.StatusPending,
		Payload:       eventJSON,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}

	tests := []struct {
		name          string
		setupMocks    func(mockOutboxRepo *MockOutboxRepo, mockEventPublisher *MockEventPublisher)
		expectedError error
	}{
		{
			name: "successful processing of pending messages",
			setupMocks: func(mockOutboxRepo *MockOutboxRepo, mockEventPublisher *MockEventPublisher) {
				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()

				mockEventPublisher.On("PublishEvent", mock.Anything, message1).Return(nil).Once()
				mockEventPublisher.On("PublishEvent", mock.Anything, message2).Return(nil).Once()
			},
			expectedError: nil,
		},
		{
			name: "error getting pending messages",
			setupMocks: func(mockOutboxRepo *MockOutboxRepo, mockEventPublisher *MockEventPublisher) {
				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error")).Once()
			},
			expectedError: errors.New("failed to get pending outbox messages"),
		},
		{
			name: "no pending messages",
			setupMocks: func(mockOutboxRepo *MockOutboxRepo, mockEventPublisher *MockEventPublisher) {
				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()
			},
			expectedError: nil,
		},
		{
			name: "error publishing one message increments attempts and continues",
			setupMocks: func(mockOutboxRepo *MockOutboxRepo, mockEventPublisher *MockEventPublisher) {
				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()

				mockEventPublisher.On("PublishEvent", mock.Anything, message1).Return(errors.New("publish error")).Once()

				mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil).Once()

				mockEventPublisher.On("PublishEvent", mock.Anything, message2).Return(nil).Once()
			},
			expectedError: nil,
		},
		{
			name: "max retry attempts reached",
			setupMocks: func(mockOutboxRepo *MockOutboxRepo, mockEventPublisher *MockEventPublisher) {
				maxAttemptsMessage := &outbox.Message{
					ID:            3,
					TransactionID: uuid.New(),
					DriverID:      driverID,
					Status:        outbox.StatusPending,
					Payload:       eventJSON,
					Attempts:      2,
					CreatedAt:     time.Now(),
				}

				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{maxAttemptsMessage}, nil).Once()

				mockEventPublisher.On("PublishEvent", mock.Anything, maxAttemptsMessage).Return(errors.New("publish error")).Once()

				mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(3)).Return(nil).Once()

				mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(3), outbox.StatusFailedToPublish).Return(nil).Once()
			},
			expectedError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOutboxRepo := &MockOutboxRepo{}
			mockEventPublisher := &MockEventPublisher{}
			poller := NewPoller(cfg, mockOutboxRepo, mockEventPublisher, logger)

			tt.setupMocks(mockOutboxRepo, mockEventPublisher)
			ctx := context.Background()

			err := poller.processPendingMessages(ctx)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockOutboxRepo.AssertExpectations(t)
			mockEventPublisher.AssertExpectations(t)
		})
	}
}

func TestPoller_Start(t *testing.T) {
	mockOutboxRepo := &MockOutboxRepo{}
	mockEventPublisher := &MockEventPublisher{}
	logger := slog.Default()

	cfg := &config.OutboxConfig{
		PollingInterval:  10 * time.Millisecond,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}

	poller := NewPoller(cfg, mockOutboxRepo, mockEventPublisher, logger)

	mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Maybe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	go poller.Start(ctx)

	<-ctx.Done()
}
