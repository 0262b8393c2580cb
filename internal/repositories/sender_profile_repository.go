package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/waveline/notification-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SenderProfileRepository defines the interface for the denormalized sender
// profile cache. Every operation is best-effort from the pipeline's point of
// view: a missing or stale profile must never block notification creation.
type SenderProfileRepository interface {
	Upsert(ctx context.Context, profile *models.SenderProfile) error
	GetByUserID(ctx context.Context, userID string) (*models.SenderProfile, error)
	Delete(ctx context.Context, userID string) error
	SweepStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// MongoSenderProfileRepository implements SenderProfileRepository for MongoDB.
type MongoSenderProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoSenderProfileRepository creates a new MongoSenderProfileRepository.
func NewMongoSenderProfileRepository(db *mongo.Database) *MongoSenderProfileRepository {
	return &MongoSenderProfileRepository{collection: db.Collection("sender_profiles")}
}

// Upsert inserts or refreshes the profile for the user, stamping last_synced.
func (r *MongoSenderProfileRepository) Upsert(ctx context.Context, profile *models.SenderProfile) error {
	profile.LastSynced = time.Now()
	update := bson.M{"$set": bson.M{
		"username":     profile.Username,
		"display_name": profile.DisplayName,
		"avatar_url":   profile.AvatarURL,
		"verified":     profile.Verified,
		"last_synced":  profile.LastSynced,
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"user_id": profile.UserID}, update, opts)
	return err
}

// GetByUserID returns the cached profile, or (nil, nil) when absent.
func (r *MongoSenderProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.SenderProfile, error) {
	var profile models.SenderProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Delete removes the cached profile for a deleted user. Deleting an absent
// profile is not an error.
func (r *MongoSenderProfileRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}

// SweepStale removes profiles that have not been synced within the retention
// window and returns the number removed.
func (r *MongoSenderProfileRepository) SweepStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := r.collection.DeleteMany(ctx, bson.M{"last_synced": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
