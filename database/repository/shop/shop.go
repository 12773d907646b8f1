// File: database/repository/shop/shop.go
package shopRepo

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

// ErrNotFound is returned when a shop does not exist.
var ErrNotFound = errors.New("shop not found")

// ShopRepository manages the barbershop directory.
type ShopRepository interface {
	Create(ctx context.Context, shop models.Shop) (string, error)
	GetByID(ctx context.Context, id string) (*models.Shop, error)
	GetByOwner(ctx context.Context, ownerID string) (*models.Shop, error)
	// List returns active shops, optionally restricted to a radius (km)
	// around the given coordinates, sorted by rating.
	List(ctx context.Context, lat, lng, radiusKM float64) ([]models.Shop, error)
	Update(ctx context.Context, shop models.Shop) error
}

type mongoShopRepo struct {
	coll *mongo.Collection
}

// NewMongoShopRepo constructs a new MongoDB ShopRepository.
func NewMongoShopRepo() ShopRepository {
	db := database.MongoClient.Database(database.DBName())
	return &mongoShopRepo{coll: db.Collection("shops")}
}

func (r *mongoShopRepo) Create(ctx context.Context, shop models.Shop) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if shop.ID == "" {
		shop.ID = uuid.New().String()
	}
	shop.CreatedAt = time.Now()
	shop.UpdatedAt = time.Now()
	if shop.Location.Type == "" {
		shop.Location.Type = "Point"
	}

	if _, err := r.coll.InsertOne(ctx, shop); err != nil {
		return "", err
	}
	return shop.ID, nil
}

func (r *mongoShopRepo) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var shop models.Shop
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&shop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *mongoShopRepo) GetByOwner(ctx context.Context, ownerID string) (*models.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var shop models.Shop
	err := r.coll.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&shop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *mongoShopRepo) List(ctx context.Context, lat, lng, radiusKM float64) ([]models.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"is_active": true}
	if lat != 0 || lng != 0 {
		if radiusKM <= 0 {
			radiusKM = 10
		}
		filter["location"] = bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{lng, lat},
				},
				"$maxDistance": radiusKM * 1000,
			},
		}
	}

	opts := options.Find()
	if _, geoQuery := filter["location"]; !geoQuery {
		// $near already sorts by distance; otherwise rank by rating.
		opts.SetSort(bson.D{{Key: "rating.average", Value: -1}})
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shops []models.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *mongoShopRepo) Update(ctx context.Context, shop models.Shop) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	shop.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": shop.ID}, shop)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the necessary indexes on the shops collection.
func (r *mongoShopRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_geo_idx"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("owner_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}
