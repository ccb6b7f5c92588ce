// Package mongo stores the ledger archive: a read-only copy of every
// committed wallet transaction, fed by the event stream. The archive is
// rebuildable and never consulted when applying balance changes.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetdesk-driver-wallet/internal/domain/wallet"
)

const (
	// ArchiveCollectionName is the name of the ledger archive collection
	ArchiveCollectionName = "ledger_archive"
)

// ArchiveRepository implements the wallet.ArchiveRepository interface for MongoDB
type ArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewArchiveRepository creates a new MongoDB ledger archive repository
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) wallet.ArchiveRepository {
	return &ArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores a ledger event after checking for duplicates, keeping the
// archive idempotent against event redelivery
func (r *ArchiveRepository) Insert(ctx context.Context, event *wallet.LedgerEvent) error {
	collection := r.db.Collection(ArchiveCollectionName)

	existing, err := r.GetByTransactionID(ctx, event.Transaction.ID)
	if err != nil && !errors.Is(err, wallet.ErrTransactionNotFound{}) {
		r.logger.Error("Failed to check for existing archive entry",
			"transaction_id", event.Transaction.ID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing archive entry: %w", err)
	}

	if existing != nil {
		return wallet.ErrDuplicateTransaction{TransactionID: event.Transaction.ID}
	}

	_, err = collection.InsertOne(ctx, event)
	if err != nil {
		r.logger.Error("Failed to insert archive entry",
			"transaction_id", event.Transaction.ID.String(),
			"error", err)
		return fmt.Errorf("failed to insert archive entry: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves an archived event by its ledger transaction id
func (r *ArchiveRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*wallet.LedgerEvent, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"transaction.id": transactionID}
	var event wallet.LedgerEvent
	err := collection.FindOne(ctx, filter).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wallet.ErrTransactionNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get archive entry",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archive entry: %w", err)
	}

	return &event, nil
}

// ListByDriver retrieves paginated archive entries for a driver, newest first
func (r *ArchiveRepository) ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*wallet.LedgerEvent, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"transaction.driver_id": driverID}
	opts := options.Find().
		SetSort(bson.M{"transaction.seq": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list archive entries",
			"driver_id", driverID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list archive entries: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*wallet.LedgerEvent
	if err := cursor.All(ctx, &events); err != nil {
		r.logger.Error("Failed to decode archive entries",
			"driver_id", driverID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archive entries: %w", err)
	}

	return events, nil
}

// CountByDriver counts archived entries for a driver
func (r *ArchiveRepository) CountByDriver(ctx context.Context, driverID uuid.UUID) (int64, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"transaction.driver_id": driverID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count archive entries",
			"driver_id", driverID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count archive entries: %w", err)
	}

	return count, nil
}
