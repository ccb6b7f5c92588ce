package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

// WorkerPoolArchiveService implements the ArchiveService interface on top of
// a bounded worker pool
type WorkerPoolArchiveService struct {
	baseService ArchiveService
	pool        *ants.Pool
	logger      *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchiveService(
	baseService ArchiveService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchiveService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchiveService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ArchiveEvent submits an event to the worker pool and waits for the result
func (s *WorkerPoolArchiveService) ArchiveEvent(ctx context.Context, event *wallet.LedgerEvent) error {
	s.logger.Info("Submitting ledger event to worker pool",
		"transaction_id", event.Transaction.ID.String(),
		"driver_id", event.Transaction.DriverID.String(),
	)

	resultChan := make(chan error, 1)

	transactionID := event.Transaction.ID.String()
	s.mu.Lock()
	s.results[transactionID] = resultChan
	s.mu.Unlock()

	// Copy the event to avoid data races with the caller
	eventCopy := *event

	err := s.pool.Submit(func() {
		err := s.baseService.ArchiveEvent(ctx, &eventCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()

		s.logger.Error("Failed to submit ledger event to worker pool",
			"transaction_id", event.Transaction.ID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolArchiveService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolArchiveService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolArchiveService) Capacity() int {
	return s.pool.Cap()
}
