// File: database/repository/service/service.go
package serviceRepo

import (
	"context"
	"errors"
	"time"

	"winqroo/database"
	"winqroo/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a service does not exist.
var ErrNotFound = errors.New("service not found")

// ServiceRepository manages a shop's service catalog. The queue engine reads
// durations and prices through GetByIDs.
type ServiceRepository interface {
	Create(ctx context.Context, svc models.Service) (string, error)
	GetByID(ctx context.Context, id string) (*models.Service, error)
	// GetByIDs returns the services for the given ids, in the same order.
	// Missing or inactive services yield ErrNotFound.
	GetByIDs(ctx context.Context, ids []string) ([]models.Service, error)
	ListByShop(ctx context.Context, shopID string, activeOnly bool) ([]models.Service, error)
	Update(ctx context.Context, svc models.Service) error
	// Deactivate soft-deletes a service so historical bookings keep resolving.
	Deactivate(ctx context.Context, id string) error
}

type mongoServiceRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRepo constructs a new MongoDB ServiceRepository.
func NewMongoServiceRepo() ServiceRepository {
	db := database.MongoClient.Database(database.DBName())
	return &mongoServiceRepo{coll: db.Collection("services")}
}

func (r *mongoServiceRepo) Create(ctx context.Context, svc models.Service) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, svc); err != nil {
		return "", err
	}
	return svc.ID, nil
}

func (r *mongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *mongoServiceRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.Service
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	byID := make(map[string]models.Service, len(found))
	for _, svc := range found {
		byID[svc.ID] = svc
	}

	ordered := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := byID[id]
		if !ok {
			return nil, ErrNotFound
		}
		ordered = append(ordered, svc)
	}
	return ordered, nil
}

func (r *mongoServiceRepo) ListByShop(ctx context.Context, shopID string, activeOnly bool) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"shop_id": shopID}
	if activeOnly {
		filter["is_active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *mongoServiceRepo) Update(ctx context.Context, svc models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	svc.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": svc.ID}, svc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoServiceRepo) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the necessary indexes on the services collection.
func (r *mongoServiceRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "shop_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("shop_active_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}
