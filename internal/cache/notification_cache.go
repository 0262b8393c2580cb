package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/waveline/notification-service/internal/models"
)

// cachedPage is the serialized form of one listing page.
type cachedPage struct {
	Notifications []models.Notification `json:"notifications"`
	Meta          models.PageMeta       `json:"meta"`
}

// NotificationCache is a short-lived Redis cache in front of the
// notification store. Every operation is best-effort: a Redis failure is
// logged and the caller falls back to the store. A nil client disables the
// cache entirely.
type NotificationCache struct {
	client    *redis.Client
	listTTL   time.Duration
	unreadTTL time.Duration
}

// NewNotificationCache creates a new NotificationCache.
func NewNotificationCache(client *redis.Client, listTTL, unreadTTL time.Duration) *NotificationCache {
	if listTTL <= 0 {
		listTTL = 5 * time.Minute
	}
	if unreadTTL <= 0 {
		unreadTTL = 30 * time.Second
	}
	return &NotificationCache{client: client, listTTL: listTTL, unreadTTL: unreadTTL}
}

// listKey builds the cache key for one listing page. Distinct filter
// combinations are distinct cache entries.
func listKey(recipientID string, opts models.ListOptions) string {
	typeFilter := string(opts.Type)
	if typeFilter == "" {
		typeFilter = "all"
	}
	return fmt.Sprintf("notifications:%s:page:%d:limit:%d:type:%s:unread:%s",
		recipientID, opts.Page, opts.Limit, typeFilter, strconv.FormatBool(opts.UnreadOnly))
}

func unreadKey(recipientID string) string {
	return fmt.Sprintf("notifications:%s:unread_count", recipientID)
}

// GetList returns a cached listing page, or ok=false on miss or cache error.
func (c *NotificationCache) GetList(ctx context.Context, recipientID string, opts models.ListOptions) ([]models.Notification, models.PageMeta, bool) {
	if c.client == nil {
		return nil, models.PageMeta{}, false
	}
	raw, err := c.client.Get(ctx, listKey(recipientID, opts)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: list get failed for %s: %v", recipientID, err)
		}
		return nil, models.PageMeta{}, false
	}
	var page cachedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		log.Printf("cache: corrupt list entry for %s: %v", recipientID, err)
		return nil, models.PageMeta{}, false
	}
	return page.Notifications, page.Meta, true
}

// SetList stores a listing page under its filter-specific key.
func (c *NotificationCache) SetList(ctx context.Context, recipientID string, opts models.ListOptions, notifications []models.Notification, meta models.PageMeta) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(cachedPage{Notifications: notifications, Meta: meta})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listKey(recipientID, opts), raw, c.listTTL).Err(); err != nil {
		log.Printf("cache: list set failed for %s: %v", recipientID, err)
	}
}

// GetUnreadCount returns the cached unread count, or ok=false on miss.
func (c *NotificationCache) GetUnreadCount(ctx context.Context, recipientID string) (int64, bool) {
	if c.client == nil {
		return 0, false
	}
	count, err := c.client.Get(ctx, unreadKey(recipientID)).Int64()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: unread get failed for %s: %v", recipientID, err)
		}
		return 0, false
	}
	return count, true
}

// SetUnreadCount stores the unread count with its (short) TTL.
func (c *NotificationCache) SetUnreadCount(ctx context.Context, recipientID string, count int64) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, unreadKey(recipientID), count, c.unreadTTL).Err(); err != nil {
		log.Printf("cache: unread set failed for %s: %v", recipientID, err)
	}
}

// InvalidateRecipient proactively deletes the unread-count key and the most
// common listing-key variants for the recipient. It does not enumerate
// arbitrary filter combinations; for those, the short TTL plus the
// read-through fallback to the store is the correctness backstop.
func (c *NotificationCache) InvalidateRecipient(ctx context.Context, recipientID string) error {
	if c.client == nil {
		return nil
	}
	keys := []string{unreadKey(recipientID)}
	for page := 1; page <= 3; page++ {
		for _, unreadOnly := range []bool{false, true} {
			keys = append(keys, listKey(recipientID, models.ListOptions{
				Page:       page,
				Limit:      models.DefaultPageSize,
				UnreadOnly: unreadOnly,
			}))
		}
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: invalidation failed for %s: %v", recipientID, err)
		return err
	}
	return nil
}
