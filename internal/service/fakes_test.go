package service

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/waveline/notification-service/internal/models"
	"github.com/waveline/notification-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memNotificationRepo is an in-memory stand-in for the Mongo store with the
// same query-level ownership and read-state semantics.
type memNotificationRepo struct {
	mu   sync.Mutex
	docs []*models.Notification

	createErr error
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if n.RecipientID == "" || n.Title == "" || n.Message == "" {
		return repositories.ErrInvalidNotification
	}
	now := time.Now()
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = now
	n.UpdatedAt = now
	clone := *n
	r.docs = append(r.docs, &clone)
	return nil
}

func (r *memNotificationRepo) List(_ context.Context, recipientID string, opts models.ListOptions) ([]models.Notification, models.PageMeta, error) {
	opts.Normalize()
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Notification
	for _, d := range r.docs {
		if d.RecipientID != recipientID {
			continue
		}
		if opts.Type != "" && d.Type != opts.Type {
			continue
		}
		if opts.UnreadOnly && d.IsRead {
			continue
		}
		matched = append(matched, d)
	}
	sort.Slice(matched, func(i, j int) bool {
		if opts.Ascending {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (opts.Page - 1) * opts.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + opts.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]models.Notification, 0, end-start)
	for _, d := range matched[start:end] {
		page = append(page, *d)
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
	return page, meta, nil
}

func (r *memNotificationRepo) find(recipientID, id string) *models.Notification {
	for _, d := range r.docs {
		if d.ID.Hex() == id && d.RecipientID == recipientID {
			return d
		}
	}
	return nil
}

func (r *memNotificationRepo) MarkAsRead(_ context.Context, recipientID, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.find(recipientID, id)
	if d == nil {
		return nil, repositories.ErrNotFound
	}
	now := time.Now()
	d.IsRead = true
	d.ReadAt = &now
	d.UpdatedAt = now
	clone := *d
	return &clone, nil
}

func (r *memNotificationRepo) MarkAsUnread(_ context.Context, recipientID, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.find(recipientID, id)
	if d == nil {
		return nil, repositories.ErrNotFound
	}
	d.IsRead = false
	d.ReadAt = nil
	d.UpdatedAt = time.Now()
	clone := *d
	return &clone, nil
}

func (r *memNotificationRepo) MarkAllAsRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var modified int64
	for _, d := range r.docs {
		if d.RecipientID == recipientID && !d.IsRead {
			d.IsRead = true
			d.ReadAt = &now
			d.UpdatedAt = now
			modified++
		}
	}
	return modified, nil
}

func (r *memNotificationRepo) UnreadCount(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, d := range r.docs {
		if d.RecipientID == recipientID && !d.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Stats(_ context.Context, recipientID string) (*models.NotificationStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &models.NotificationStats{ByType: make(map[models.NotificationType]models.TypeStat)}
	for _, d := range r.docs {
		if d.RecipientID != recipientID {
			continue
		}
		stats.Total++
		typeStat := stats.ByType[d.Type]
		if d.IsRead {
			stats.Read++
			typeStat.Read++
		} else {
			stats.Unread++
			typeStat.Unread++
		}
		stats.ByType[d.Type] = typeStat
	}
	return stats, nil
}

func (r *memNotificationRepo) Delete(_ context.Context, recipientID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.docs {
		if d.ID.Hex() == id && d.RecipientID == recipientID {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *memNotificationRepo) DeleteAll(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.docs[:0]
	var deleted int64
	for _, d := range r.docs {
		if d.RecipientID == recipientID {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	r.docs = kept
	return deleted, nil
}

func (r *memNotificationRepo) CleanupOlderThan(_ context.Context, days int) (int64, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -days)
	kept := r.docs[:0]
	var deleted int64
	seen := make(map[string]bool)
	var recipients []string
	for _, d := range r.docs {
		if d.IsRead && d.CreatedAt.Before(cutoff) {
			deleted++
			if !seen[d.RecipientID] {
				seen[d.RecipientID] = true
				recipients = append(recipients, d.RecipientID)
			}
			continue
		}
		kept = append(kept, d)
	}
	r.docs = kept
	return deleted, recipients, nil
}

// memPreferenceRepo keeps preference rows in a map, creating defaults lazily
// like the Postgres implementation.
type memPreferenceRepo struct {
	mu    sync.Mutex
	rows  map[string]*models.NotificationPreferences
	fail  error
	seeds map[string]*models.NotificationPreferences
}

func newMemPreferenceRepo() *memPreferenceRepo {
	return &memPreferenceRepo{rows: make(map[string]*models.NotificationPreferences)}
}

func (r *memPreferenceRepo) GetOrCreate(userID string) (*models.NotificationPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	if p, ok := r.rows[userID]; ok {
		return p, nil
	}
	if p, ok := r.seeds[userID]; ok {
		r.rows[userID] = p
		return p, nil
	}
	p := models.DefaultPreferences(userID)
	r.rows[userID] = p
	return p, nil
}

func (r *memPreferenceRepo) Update(prefs *models.NotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.rows[prefs.UserID] = prefs
	return nil
}

func (r *memPreferenceRepo) seed(prefs *models.NotificationPreferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seeds == nil {
		r.seeds = make(map[string]*models.NotificationPreferences)
	}
	r.seeds[prefs.UserID] = prefs
	r.rows[prefs.UserID] = prefs
}

// memProfileRepo is an in-memory sender profile cache.
type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.SenderProfile
	getErr   error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[string]*models.SenderProfile)}
}

func (r *memProfileRepo) Upsert(_ context.Context, profile *models.SenderProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.LastSynced = time.Now()
	clone := *profile
	r.profiles[profile.UserID] = &clone
	return nil
}

func (r *memProfileRepo) GetByUserID(_ context.Context, userID string) (*models.SenderProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *memProfileRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

func (r *memProfileRepo) SweepStale(_ context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var deleted int64
	for id, p := range r.profiles {
		if p.LastSynced.Before(cutoff) {
			delete(r.profiles, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeCache records invalidations; gets always miss and sets are dropped.
type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *fakeCache) GetList(_ context.Context, _ string, _ models.ListOptions) ([]models.Notification, models.PageMeta, bool) {
	return nil, models.PageMeta{}, false
}

func (c *fakeCache) SetList(_ context.Context, _ string, _ models.ListOptions, _ []models.Notification, _ models.PageMeta) {
}

func (c *fakeCache) GetUnreadCount(_ context.Context, _ string) (int64, bool) { return 0, false }

func (c *fakeCache) SetUnreadCount(_ context.Context, _ string, _ int64) {}

func (c *fakeCache) InvalidateRecipient(_ context.Context, recipientID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, recipientID)
	return nil
}

func (c *fakeCache) invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.invalidated))
	copy(out, c.invalidated)
	return out
}

// fakePublisher records published events and can simulate broker failures.
type fakePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
	fail      error
}

type publishedEvent struct {
	routingKey string
	payload    interface{}
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.published = append(p.published, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}
