// File: database/repository/queue/interface.go
package queueRepo

import (
	"context"
	"errors"

	"winqroo/database"
	"winqroo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a queue entry does not exist.
var ErrNotFound = errors.New("queue entry not found")

// PositionUpdate rewrites the position and estimated wait of one entry. The
// queue engine computes these; the repository applies them blindly.
type PositionUpdate struct {
	EntryID       string
	Position      int
	EstimatedWait int
}

// QueueRepository is the authoritative store for queue entries. The compound
// write operations are atomic: either the entry mutation and every position
// update land together, or none of them do. The ranking and estimation logic
// never touches storage directly.
type QueueRepository interface {
	// Insert persists a new entry at its position and applies the position
	// shifts of the entries behind it, atomically.
	Insert(ctx context.Context, entry models.QueueEntry, shifted []PositionUpdate) error

	// UpdateStatus persists the entry's new status and timestamps together
	// with the renumbering of the remaining active entries, atomically.
	UpdateStatus(ctx context.Context, entry models.QueueEntry, renumbered []PositionUpdate) error

	// SwapPositions applies a set of position/estimate rewrites, atomically.
	SwapPositions(ctx context.Context, updates []PositionUpdate) error

	GetByID(ctx context.Context, id string) (*models.QueueEntry, error)

	// ListActive returns the shop's waiting and in-progress entries, ascending
	// by position.
	ListActive(ctx context.Context, shopID string) ([]models.QueueEntry, error)

	// ListByShop returns every entry for the shop, active and historical.
	ListByShop(ctx context.Context, shopID string) ([]models.QueueEntry, error)

	ListByCustomer(ctx context.Context, customerID string) ([]models.QueueEntry, error)

	// FindActiveByCustomer returns the customer's active entry in any shop,
	// or nil if they are not queued anywhere.
	FindActiveByCustomer(ctx context.Context, customerID string) (*models.QueueEntry, error)
}

type mongoQueueRepo struct {
	coll *mongo.Collection
}

// NewMongoQueueRepo constructs a new MongoDB QueueRepository.
func NewMongoQueueRepo() QueueRepository {
	db := database.MongoClient.Database(database.DBName())
	return &mongoQueueRepo{
		coll: db.Collection("queues"),
	}
}
