// File: database/repository/appointment/appointment.go
package appointmentRepo

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

// ErrNotFound is returned when an appointment does not exist.
var ErrNotFound = errors.New("appointment not found")

// AppointmentRepository manages scheduled bookings.
type AppointmentRepository interface {
	Create(ctx context.Context, appt models.Appointment) (string, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByShop(ctx context.Context, shopID string, from, to time.Time) ([]models.Appointment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error)
	// CountOverlapping counts non-terminal appointments for the shop whose
	// [scheduled_at, scheduled_at+duration) window overlaps the given one.
	CountOverlapping(ctx context.Context, shopID string, start, end time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	// ListDueReminders returns unreminded appointments scheduled within the
	// given horizon.
	ListDueReminders(ctx context.Context, horizon time.Time) ([]models.Appointment, error)
	MarkReminderSent(ctx context.Context, id string) error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new MongoDB AppointmentRepository.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database(database.DBName())
	return &mongoAppointmentRepo{coll: db.Collection("appointments")}
}

func (r *mongoAppointmentRepo) Create(ctx context.Context, appt models.Appointment) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return "", err
	}
	return appt.ID, nil
}

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *mongoAppointmentRepo) ListByShop(ctx context.Context, shopID string, from, to time.Time) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"shop_id": shopID}
	if !from.IsZero() || !to.IsZero() {
		window := bson.M{}
		if !from.IsZero() {
			window["$gte"] = from
		}
		if !to.IsZero() {
			window["$lt"] = to
		}
		filter["scheduled_at"] = window
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) CountOverlapping(ctx context.Context, shopID string, start, end time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// An appointment [s, s+d) overlaps [start, end) when s < end and
	// s+d > start. Durations are small, so bound the left edge instead of
	// computing s+d in the query.
	earliest := start.Add(-8 * time.Hour)
	filter := bson.M{
		"shop_id":      shopID,
		"status":       bson.M{"$in": bson.A{models.AppointmentScheduled, models.AppointmentConfirmed, models.AppointmentInProgress}},
		"scheduled_at": bson.M{"$gte": earliest, "$lt": end},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var candidates []models.Appointment
	if err := cursor.All(ctx, &candidates); err != nil {
		return 0, err
	}

	var count int64
	for _, appt := range candidates {
		apptEnd := appt.ScheduledAt.Add(time.Duration(appt.Duration) * time.Minute)
		if appt.ScheduledAt.Before(end) && apptEnd.After(start) {
			count++
		}
	}
	return count, nil
}

func (r *mongoAppointmentRepo) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepo) ListDueReminders(ctx context.Context, horizon time.Time) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"reminder_sent": false,
		"status":        bson.M{"$in": bson.A{models.AppointmentScheduled, models.AppointmentConfirmed}},
		"scheduled_at":  bson.M{"$gte": time.Now(), "$lte": horizon},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) MarkReminderSent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"reminder_sent": true, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the necessary indexes on the appointments collection.
func (r *mongoAppointmentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "shop_id", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("shop_scheduled_idx"),
		},
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("customer_scheduled_idx"),
		},
		{
			Keys:    bson.D{{Key: "reminder_sent", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("reminder_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}
