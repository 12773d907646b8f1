// File: database/repository/queue/indexes.go
package queueRepo

import (
	"context"
	"fmt"
	"time"

	"winqroo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the queues collection.
func (r *mongoQueueRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on entry ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Compound index for the active-line query (primary query pattern)
		{
			Keys:    bson.D{{Key: "shop_id", Value: 1}, {Key: "status", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetName("shop_status_position_idx"),
		},
		// Compound index for the one-active-entry-per-customer check
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("customer_status_idx"),
		},
		// Partial unique index backing the one-active-entry-per-customer rule
		// at the storage layer, so racing inserts cannot slip past the
		// service-level check
		{
			Keys: bson.D{{Key: "customer_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_active_customer").
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": bson.A{models.QueueStatusWaiting, models.QueueStatusInProgress}},
				}),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create queue indexes: %w", err)
	}
	return nil
}
