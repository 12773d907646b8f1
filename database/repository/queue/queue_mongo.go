// File: database/repository/queue/queue_mongo.go
package queueRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"winqroo/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var activeStatuses = bson.A{models.QueueStatusWaiting, models.QueueStatusInProgress}

func (r *mongoQueueRepo) GetByID(ctx context.Context, id string) (*models.QueueEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.QueueEntry
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *mongoQueueRepo) ListActive(ctx context.Context, shopID string) ([]models.QueueEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"shop_id": shopID, "status": bson.M{"$in": activeStatuses}}
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.QueueEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *mongoQueueRepo) ListByShop(ctx context.Context, shopID string) ([]models.QueueEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "joined_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"shop_id": shopID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.QueueEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *mongoQueueRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.QueueEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.QueueEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *mongoQueueRepo) FindActiveByCustomer(ctx context.Context, customerID string) (*models.QueueEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"customer_id": customerID, "status": bson.M{"$in": activeStatuses}}
	var entry models.QueueEntry
	err := r.coll.FindOne(ctx, filter).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *mongoQueueRepo) Insert(ctx context.Context, entry models.QueueEntry, shifted []PositionUpdate) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.coll.InsertOne(sc, entry); err != nil {
			return fmt.Errorf("insert queue entry failed: %w", err)
		}
		return r.applyUpdates(sc, shifted)
	})
}

func (r *mongoQueueRepo) UpdateStatus(ctx context.Context, entry models.QueueEntry, renumbered []PositionUpdate) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		set := bson.M{
			"status":         entry.Status,
			"estimated_wait": entry.EstimatedWait,
		}
		if entry.StartedAt != nil {
			set["started_at"] = entry.StartedAt
		}
		if entry.CompletedAt != nil {
			set["completed_at"] = entry.CompletedAt
		}

		res, err := r.coll.UpdateOne(sc, bson.M{"id": entry.ID}, bson.M{"$set": set})
		if err != nil {
			return fmt.Errorf("update queue status failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return r.applyUpdates(sc, renumbered)
	})
}

func (r *mongoQueueRepo) SwapPositions(ctx context.Context, updates []PositionUpdate) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		return r.applyUpdates(sc, updates)
	})
}

func (r *mongoQueueRepo) applyUpdates(sc mongo.SessionContext, updates []PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": u.EntryID}).
			SetUpdate(bson.M{"$set": bson.M{
				"position":       u.Position,
				"estimated_wait": u.EstimatedWait,
			}}))
	}
	res, err := r.coll.BulkWrite(sc, writes)
	if err != nil {
		return fmt.Errorf("position rewrite failed: %w", err)
	}
	if res.MatchedCount != int64(len(updates)) {
		return fmt.Errorf("position rewrite matched %d of %d entries", res.MatchedCount, len(updates))
	}
	return nil
}

// withTransaction runs fn inside a Mongo session transaction so a failed
// renumbering rolls back the accompanying entry mutation.
func (r *mongoQueueRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("queue transaction failed: %w", err)
	}
	return nil
}
