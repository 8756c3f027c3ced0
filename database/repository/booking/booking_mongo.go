package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toltimed/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrBookingNotFound = errors.New("booking not found")

// MongoBookingRepo is the submission endpoint: it persists accepted bookings.
// A session can be booked once; resubmitting it returns the stored booking.
type MongoBookingRepo struct {
	coll  *mongo.Collection
	clock func() time.Time
}

// NewMongoBookingRepo constructs a repo over db and ensures its indexes.
func NewMongoBookingRepo(db *mongo.Database) (*MongoBookingRepo, error) {
	repo := &MongoBookingRepo{coll: db.Collection("bookings"), clock: time.Now}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "payload.sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "payload.userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return repo, nil
}

// NewBooking stamps a payload into a confirmed booking record.
func NewBooking(payload models.BookingPayload, now time.Time) *models.Booking {
	return &models.Booking{
		ID:        uuid.New().String(),
		Status:    models.BookingStatusConfirmed,
		CreatedAt: now.UTC(),
		Payload:   payload,
	}
}

// SubmitBooking stores payload as a new booking.
func (r *MongoBookingRepo) SubmitBooking(ctx context.Context, payload models.BookingPayload) (*models.Booking, error) {
	booking := NewBooking(payload, r.clock())
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.bySession(ctx, payload.SessionID)
		}
		return nil, fmt.Errorf("error creating booking: %w", err)
	}
	return booking, nil
}

func (r *MongoBookingRepo) bySession(ctx context.Context, sessionID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"payload.sessionId": sessionID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking for session %s: %w", sessionID, err)
	}
	return &booking, nil
}

// GetBookingByID retrieves a booking by its ID.
func (r *MongoBookingRepo) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// ListByUser returns a user's bookings, newest first.
func (r *MongoBookingRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.coll.Find(ctx, bson.M{"payload.userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
