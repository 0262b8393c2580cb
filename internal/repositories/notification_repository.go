package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/waveline/notification-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a document matching both the id and the
// recipient does not exist. Ownership is enforced at the query level: asking
// for another user's notification is indistinguishable from asking for one
// that never existed.
var ErrNotFound = errors.New("notification not found")

// ErrInvalidNotification is returned when a notification violates the store's
// field constraints.
var ErrInvalidNotification = errors.New("invalid notification")

// NotificationRepository defines the interface for notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipientID string, opts models.ListOptions) ([]models.Notification, models.PageMeta, error)
	MarkAsRead(ctx context.Context, recipientID, id string) (*models.Notification, error)
	MarkAsUnread(ctx context.Context, recipientID, id string) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	Stats(ctx context.Context, recipientID string) (*models.NotificationStats, error)
	Delete(ctx context.Context, recipientID, id string) error
	DeleteAll(ctx context.Context, recipientID string) (int64, error)
	CleanupOlderThan(ctx context.Context, days int) (int64, []string, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB.
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository.
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// Create inserts a new notification with is_read=false and fresh timestamps.
func (r *MongoNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := validateNotification(n); err != nil {
		return err
	}
	now := time.Now()
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

func validateNotification(n *models.Notification) error {
	if n.RecipientID == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidNotification)
	}
	// Limits are in characters, not bytes, so multi-byte content is not
	// penalized.
	if n.Title == "" || utf8.RuneCountInString(n.Title) > models.MaxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidNotification, models.MaxTitleLen)
	}
	if n.Message == "" || utf8.RuneCountInString(n.Message) > models.MaxMessageLen {
		return fmt.Errorf("%w: message must be 1-%d characters", ErrInvalidNotification, models.MaxMessageLen)
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidNotification, n.Type)
	}
	return nil
}

// List returns one page of a recipient's notifications plus pagination
// metadata. Default sort is newest-first.
func (r *MongoNotificationRepository) List(ctx context.Context, recipientID string, opts models.ListOptions) ([]models.Notification, models.PageMeta, error) {
	opts.Normalize()

	filter := bson.M{"recipient_id": recipientID}
	if opts.Type != "" {
		filter["type"] = opts.Type
	}
	if opts.UnreadOnly {
		filter["is_read"] = false
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, models.PageMeta{}, err
	}

	sortDir := -1
	if opts.Ascending {
		sortDir = 1
	}
	findOptions := options.Find().
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit)).
		SetSort(bson.D{{Key: "created_at", Value: sortDir}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	defer cursor.Close(ctx)

	notifications := make([]models.Notification, 0, opts.Limit)
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, models.PageMeta{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(opts.Limit)))
	meta := models.PageMeta{
		CurrentPage: opts.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		PerPage:     opts.Limit,
		HasNext:     opts.Page < totalPages,
		HasPrev:     opts.Page > 1,
	}
	return notifications, meta, nil
}

// MarkAsRead marks one notification as read. The filter matches both the id
// and the recipient, so a notification owned by somebody else yields
// ErrNotFound. Repeated calls are idempotent.
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, recipientID, id string) (*models.Notification, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{
		"is_read":    true,
		"read_at":    now,
		"updated_at": now,
	}}
	return r.findOneAndUpdate(ctx, recipientID, id, update)
}

// MarkAsUnread clears the read state of one notification. read_at is unset
// so the read-state invariant (read_at set iff is_read) holds.
func (r *MongoNotificationRepository) MarkAsUnread(ctx context.Context, recipientID, id string) (*models.Notification, error) {
	update := bson.M{
		"$set":   bson.M{"is_read": false, "updated_at": time.Now()},
		"$unset": bson.M{"read_at": ""},
	}
	return r.findOneAndUpdate(ctx, recipientID, id, update)
}

func (r *MongoNotificationRepository) findOneAndUpdate(ctx context.Context, recipientID, id string, update bson.M) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID format: %w", err)
	}

	filter := bson.M{"_id": objID, "recipient_id": recipientID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// MarkAllAsRead marks every unread notification for the recipient as read
// and returns the number of documents modified.
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	now := time.Now()
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now, "updated_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// UnreadCount counts the recipient's unread notifications.
func (r *MongoNotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

// Stats aggregates total/unread/read counts plus a per-type breakdown.
func (r *MongoNotificationRepository) Stats(ctx context.Context, recipientID string) (*models.NotificationStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipient_id": recipientID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"type": "$type", "is_read": "$is_read"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			Type   models.NotificationType `bson:"type"`
			IsRead bool                    `bson:"is_read"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &models.NotificationStats{ByType: make(map[models.NotificationType]models.TypeStat)}
	for _, row := range rows {
		stats.Total += row.Count
		typeStat := stats.ByType[row.ID.Type]
		if row.ID.IsRead {
			stats.Read += row.Count
			typeStat.Read += row.Count
		} else {
			stats.Unread += row.Count
			typeStat.Unread += row.Count
		}
		stats.ByType[row.ID.Type] = typeStat
	}
	return stats, nil
}

// Delete removes one notification, matching both id and recipient.
func (r *MongoNotificationRepository) Delete(ctx context.Context, recipientID, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "recipient_id": recipientID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every notification for the recipient.
func (r *MongoNotificationRepository) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"recipient_id": recipientID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CleanupOlderThan removes notifications that are both read and older than
// the cutoff. Unread notifications are never deleted by age. The distinct
// recipient ids of the removed documents are returned so callers can
// invalidate their cache entries.
func (r *MongoNotificationRepository) CleanupOlderThan(ctx context.Context, days int) (int64, []string, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	filter := bson.M{
		"is_read":    true,
		"created_at": bson.M{"$lt": cutoff},
	}

	raw, err := r.collection.Distinct(ctx, "recipient_id", filter)
	if err != nil {
		return 0, nil, err
	}
	recipients := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			recipients = append(recipients, id)
		}
	}

	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, nil, err
	}
	return res.DeletedCount, recipients, nil
}
