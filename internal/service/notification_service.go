package service

import (
	"context"
	"fmt"
	"log"

	"github.com/waveline/notification-service/internal/broker"
	"github.com/waveline/notification-service/internal/events"
	"github.com/waveline/notification-service/internal/models"
	"github.com/waveline/notification-service/internal/repositories"
)

// SideEffect records the outcome of one best-effort side effect (cache
// invalidation, outbound publication). Side-effect failures never fail the
// creation: the stored notification is the source of truth.
type SideEffect struct {
	OK     bool
	Reason string
}

func sideEffectOK() SideEffect { return SideEffect{OK: true} }

func sideEffectFailed(err error) SideEffect {
	return SideEffect{OK: false, Reason: err.Error()}
}

// CreateResult is the outcome of a notification creation attempt.
type CreateResult struct {
	// Notification is the stored record, nil when Filtered.
	Notification *models.Notification
	// Filtered is true when the recipient's preferences suppressed the
	// intent. This is a normal outcome, not an error.
	Filtered bool
	// CacheInvalidation and Publication report the best-effort side effects
	// that follow a successful creation.
	CacheInvalidation SideEffect
	Publication       SideEffect
}

// createdEvent is the payload of the outbound notification.created event.
type createdEvent struct {
	models.Notification
	Sender *models.SenderSummary `json:"sender,omitempty"`
}

// Cache is the read-side cache the service writes through. Implementations
// must be best-effort: a failed get is a miss, a failed set is ignored.
type Cache interface {
	GetList(ctx context.Context, recipientID string, opts models.ListOptions) ([]models.Notification, models.PageMeta, bool)
	SetList(ctx context.Context, recipientID string, opts models.ListOptions, notifications []models.Notification, meta models.PageMeta)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, bool)
	SetUnreadCount(ctx context.Context, recipientID string, count int64)
	InvalidateRecipient(ctx context.Context, recipientID string) error
}

// NotificationService orchestrates the pipeline around the notification
// store: preference gating, persistence, cache invalidation and outbound
// publication, plus the read-side operations.
type NotificationService struct {
	store     repositories.NotificationRepository
	prefs     repositories.PreferenceRepository
	profiles  repositories.SenderProfileRepository
	cache     Cache
	publisher broker.EventPublisher
	gate      *PreferenceGate
}

// NewNotificationService wires the pipeline dependencies together. publisher
// may be nil in read-only deployments; cache falls back to the store when
// unavailable.
func NewNotificationService(
	store repositories.NotificationRepository,
	prefs repositories.PreferenceRepository,
	profiles repositories.SenderProfileRepository,
	notifCache Cache,
	publisher broker.EventPublisher,
) *NotificationService {
	return &NotificationService{
		store:     store,
		prefs:     prefs,
		profiles:  profiles,
		cache:     notifCache,
		publisher: publisher,
		gate:      NewPreferenceGate(prefs),
	}
}

// CreateFromIntent runs an intent through the preference gate and, if
// permitted, stores it and fires the side effects. Only the in-app channel
// gates creation: a notification that may not push still exists in-app.
func (s *NotificationService) CreateFromIntent(ctx context.Context, intent *models.Intent) (*CreateResult, error) {
	allowed, err := s.gate.ShouldSend(intent.RecipientID, intent.Type, models.ChannelInApp)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &CreateResult{Filtered: true}, nil
	}
	return s.create(ctx, intent)
}

// CreateDirect stores an intent without consulting the preference gate. It
// serves system-critical paths (event cancellation, account restriction)
// that must always reach the user.
func (s *NotificationService) CreateDirect(ctx context.Context, intent *models.Intent) (*CreateResult, error) {
	return s.create(ctx, intent)
}

func (s *NotificationService) create(ctx context.Context, intent *models.Intent) (*CreateResult, error) {
	n := &models.Notification{
		RecipientID:   intent.RecipientID,
		SenderID:      intent.SenderID,
		Type:          intent.Type,
		Title:         intent.Title,
		Message:       intent.Message,
		ReferenceID:   intent.ReferenceID,
		ReferenceType: intent.ReferenceType,
		Priority:      intent.Priority,
		Metadata:      intent.Metadata,
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	result := &CreateResult{Notification: n}
	result.CacheInvalidation = s.invalidate(ctx, n.RecipientID)
	result.Publication = s.publishCreated(ctx, n)
	return result, nil
}

func (s *NotificationService) invalidate(ctx context.Context, recipientID string) SideEffect {
	if s.cache == nil {
		return sideEffectOK()
	}
	if err := s.cache.InvalidateRecipient(ctx, recipientID); err != nil {
		return sideEffectFailed(err)
	}
	return sideEffectOK()
}

// publishCreated enriches the notification with the cached sender profile
// and publishes notification.created. Failures are logged and swallowed.
func (s *NotificationService) publishCreated(ctx context.Context, n *models.Notification) SideEffect {
	if s.publisher == nil {
		return sideEffectOK()
	}

	payload := createdEvent{Notification: *n}
	if n.SenderID != "" && s.profiles != nil {
		profile, err := s.profiles.GetByUserID(ctx, n.SenderID)
		if err != nil {
			log.Printf("service: sender profile lookup failed for %s: %v", n.SenderID, err)
		} else if profile != nil {
			payload.Sender = profile.ToSummary()
		}
	}

	if err := s.publisher.Publish(ctx, events.NotificationCreated, payload); err != nil {
		log.Printf("service: notification.created publish failed for %s: %v", n.ID.Hex(), err)
		return sideEffectFailed(err)
	}
	return sideEffectOK()
}

// List returns one page of notifications, read-through cached.
func (s *NotificationService) List(ctx context.Context, recipientID string, opts models.ListOptions) ([]models.Notification, models.PageMeta, error) {
	opts.Normalize()
	if s.cache != nil && !opts.Ascending {
		if notifications, meta, ok := s.cache.GetList(ctx, recipientID, opts); ok {
			return notifications, meta, nil
		}
	}

	notifications, meta, err := s.store.List(ctx, recipientID, opts)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	if s.cache != nil && !opts.Ascending {
		s.cache.SetList(ctx, recipientID, opts, notifications, meta)
	}
	return notifications, meta, nil
}

// UnreadCount returns the recipient's unread count, read-through cached.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	if s.cache != nil {
		if count, ok := s.cache.GetUnreadCount(ctx, recipientID); ok {
			return count, nil
		}
	}

	count, err := s.store.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.SetUnreadCount(ctx, recipientID, count)
	}
	return count, nil
}

// MarkAsRead marks one notification read and invalidates the cache.
func (s *NotificationService) MarkAsRead(ctx context.Context, recipientID, id string) (*models.Notification, error) {
	n, err := s.store.MarkAsRead(ctx, recipientID, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, recipientID)
	return n, nil
}

// MarkAsUnread clears one notification's read state and invalidates the cache.
func (s *NotificationService) MarkAsUnread(ctx context.Context, recipientID, id string) (*models.Notification, error) {
	n, err := s.store.MarkAsUnread(ctx, recipientID, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, recipientID)
	return n, nil
}

// MarkAllAsRead marks all unread notifications read, returning the count.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	modified, err := s.store.MarkAllAsRead(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, recipientID)
	return modified, nil
}

// Delete removes one notification owned by the recipient.
func (s *NotificationService) Delete(ctx context.Context, recipientID, id string) error {
	if err := s.store.Delete(ctx, recipientID, id); err != nil {
		return err
	}
	s.invalidate(ctx, recipientID)
	return nil
}

// DeleteAll removes every notification for the recipient.
func (s *NotificationService) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	deleted, err := s.store.DeleteAll(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, recipientID)
	return deleted, nil
}

// Stats aggregates the recipient's notification counts.
func (s *NotificationService) Stats(ctx context.Context, recipientID string) (*models.NotificationStats, error) {
	return s.store.Stats(ctx, recipientID)
}

// CleanupOlderThan removes read notifications older than the cutoff and
// invalidates the cache of every recipient the sweep touched. Unread
// notifications are never removed by age.
func (s *NotificationService) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	deleted, recipients, err := s.store.CleanupOlderThan(ctx, days)
	if err != nil {
		return 0, err
	}
	for _, recipientID := range recipients {
		s.invalidate(ctx, recipientID)
	}
	return deleted, nil
}

// GetPreferences returns the user's preferences, creating defaults lazily.
func (s *NotificationService) GetPreferences(userID string) (*models.NotificationPreferences, error) {
	return s.prefs.GetOrCreate(userID)
}

// UpdatePreferences applies a partial preference update. Unknown type keys
// are rejected before the merge.
func (s *NotificationService) UpdatePreferences(userID string, req *models.UpdatePreferencesRequest) (*models.NotificationPreferences, error) {
	for t := range req.Preferences {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown notification type %q", repositories.ErrInvalidNotification, t)
		}
	}

	prefs, err := s.prefs.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	prefs.Merge(req)
	if err := s.prefs.Update(prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}
