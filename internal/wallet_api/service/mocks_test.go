package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/fleetdesk-driver-wallet/internal/domain/outbox"
	"github.com/fleetdesk-driver-wallet/internal/domain/request"
	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Mock implementations of the repository dependencies. WithTx returns the
// mock itself so expectations set before the transaction still apply inside.

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateIfAbsent(ctx context.Context, driverID uuid.UUID) error {
	args := m.Called(ctx, driverID)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByDriverID(ctx context.Context, driverID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) LockForUpdate(ctx context.Context, driverID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, driverID uuid.UUID, balance int64) error {
	args := m.Called(ctx, driverID, balance)
	return args.Error(0)
}

func (m *MockWalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	m.Called(tx)
	return m
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, txn *wallet.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) GetByDedupKey(ctx context.Context, dedupKey string) (*wallet.Transaction, error) {
	args := m.Called(ctx, dedupKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int, newestFirst bool) ([]*wallet.Transaction, error) {
	args := m.Called(ctx, driverID, limit, offset, newestFirst)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) CountByDriver(ctx context.Context, driverID uuid.UUID) (int64, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) SumByDriver(ctx context.Context, driverID uuid.UUID) (int64, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) WithTx(tx pgx.Tx) wallet.LedgerRepository {
	m.Called(tx)
	return m
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status outbox.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	m.Called(tx)
	return m
}

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *request.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.Request), args.Error(1)
}

func (m *MockRequestRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.Request), args.Error(1)
}

func (m *MockRequestRepository) Resolve(ctx context.Context, req *request.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) ListPending(ctx context.Context, limit, offset int) ([]*request.Request, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*request.Request), args.Error(1)
}

func (m *MockRequestRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepository) WithTx(tx pgx.Tx) request.Repository {
	m.Called(tx)
	return m
}

type MockDeltaApplier struct {
	mock.Mock
}

func (m *MockDeltaApplier) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, draft wallet.Draft) (*wallet.Transaction, error) {
	args := m.Called(ctx, tx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}
