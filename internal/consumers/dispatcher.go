package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/waveline/notification-service/internal/broker"
	"github.com/waveline/notification-service/internal/events"
	"github.com/waveline/notification-service/internal/models"
	"github.com/waveline/notification-service/internal/repositories"
	"github.com/waveline/notification-service/internal/service"
)

// Dispatcher translates inbound domain events into pipeline actions. One
// handler exists per routing key; unknown keys and recognized no-op events
// complete without error so their messages are acknowledged, never retried.
type Dispatcher struct {
	svc      *service.NotificationService
	profiles repositories.SenderProfileRepository

	processed atomic.Uint64
	filtered  atomic.Uint64
	failed    atomic.Uint64
}

// NewDispatcher creates a dispatcher over the notification service and the
// sender profile cache.
func NewDispatcher(svc *service.NotificationService, profiles repositories.SenderProfileRepository) *Dispatcher {
	return &Dispatcher{svc: svc, profiles: profiles}
}

// Stats is a snapshot of the dispatcher's pipeline counters. Filtered is
// counted distinctly from both success and failure.
type Stats struct {
	Processed uint64 `json:"processed"`
	Filtered  uint64 `json:"filtered"`
	Failed    uint64 `json:"failed"`
}

// Snapshot returns the current counter values.
func (d *Dispatcher) Snapshot() Stats {
	return Stats{
		Processed: d.processed.Load(),
		Filtered:  d.filtered.Load(),
		Failed:    d.failed.Load(),
	}
}

// RoutingKeys lists every event stream the service binds a consumer to.
var RoutingKeys = []string{
	events.UserRegistered, events.UserUpdated, events.UserDeleted,
	events.UserFollowed, events.UserUnfollowed, events.UserBlocked,
	events.UserOnline, events.UserOffline,
	events.PostCreated, events.PostLiked, events.PostCommented,
	events.PostShared, events.PostMentioned,
	events.EventCreated, events.EventUpdated, events.EventCancelled,
	events.EventRSVPAdded, events.EventRSVPRemove,
	events.MessageSent, events.MessageRead,
}

// BindAll registers a consumer for every routing key the service understands.
func (d *Dispatcher) BindAll(ctx context.Context, registry *broker.ConsumerRegistry) error {
	for _, key := range RoutingKeys {
		routingKey := key
		err := registry.Bind(ctx, routingKey, func(ctx context.Context, body []byte) error {
			return d.Dispatch(ctx, routingKey, body)
		})
		if err != nil {
			return fmt.Errorf("failed to bind %q: %w", routingKey, err)
		}
	}
	return nil
}

// Dispatch routes one message to its handler. The payload is unwrapped from
// the producer envelope when one is present. The returned error decides the
// message's fate: nil acknowledges, non-nil rejects without requeue.
func (d *Dispatcher) Dispatch(ctx context.Context, routingKey string, body []byte) error {
	data := events.Unwrap(body)

	var err error
	switch routingKey {
	case events.UserFollowed:
		err = d.handleFollow(ctx, data)
	case events.PostLiked:
		err = d.handleLike(ctx, data)
	case events.PostCommented:
		err = d.handleComment(ctx, data)
	case events.PostShared:
		err = d.handleShare(ctx, data)
	case events.PostMentioned:
		err = d.handleMentions(ctx, data)
	case events.EventRSVPAdded:
		err = d.handleRSVP(ctx, data)
	case events.EventCancelled:
		err = d.handleEventCancelled(ctx, data)
	case events.UserBlocked:
		err = d.handleBlock(ctx, data)
	case events.MessageSent:
		err = d.handleMessage(ctx, data)
	case events.UserRegistered, events.UserUpdated:
		err = d.handleProfileSync(ctx, data)
	case events.UserDeleted:
		err = d.handleProfileDelete(ctx, data)
	case events.PostCreated, events.EventCreated, events.EventUpdated,
		events.EventRSVPRemove, events.UserUnfollowed, events.MessageRead,
		events.UserOnline, events.UserOffline:
		// Recognized events with no notification effect.
		return nil
	default:
		log.Printf("consumers: unknown event type %q, acknowledging", routingKey)
		return nil
	}

	if err != nil {
		d.failed.Add(1)
	}
	return err
}

// createGated runs an intent through the gated creation path. A nil intent
// and a preference-filtered intent are both normal outcomes.
func (d *Dispatcher) createGated(ctx context.Context, intent *models.Intent) error {
	if intent == nil {
		return nil
	}
	result, err := d.svc.CreateFromIntent(ctx, intent)
	if err != nil {
		return err
	}
	if result.Filtered {
		d.filtered.Add(1)
		log.Printf("consumers: %s notification for %s filtered by preferences", intent.Type, intent.RecipientID)
		return nil
	}
	d.processed.Add(1)
	return nil
}

// createDirect stores a system-critical intent, bypassing the gate.
func (d *Dispatcher) createDirect(ctx context.Context, intent *models.Intent) error {
	if intent == nil {
		return nil
	}
	if _, err := d.svc.CreateDirect(ctx, intent); err != nil {
		return err
	}
	d.processed.Add(1)
	return nil
}

func (d *Dispatcher) handleFollow(ctx context.Context, data []byte) error {
	var p events.FollowPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode follow payload: %w", err)
	}
	return d.createGated(ctx, events.MapFollow(p))
}

func (d *Dispatcher) handleLike(ctx context.Context, data []byte) error {
	var p events.LikePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode like payload: %w", err)
	}
	return d.createGated(ctx, events.MapLike(p))
}

func (d *Dispatcher) handleComment(ctx context.Context, data []byte) error {
	var p events.CommentPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode comment payload: %w", err)
	}
	return d.createGated(ctx, events.MapComment(p))
}

func (d *Dispatcher) handleShare(ctx context.Context, data []byte) error {
	var p events.SharePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode share payload: %w", err)
	}
	return d.createGated(ctx, events.MapShare(p))
}

// handleMentions fans a single post.mentioned event out into one intent per
// mentioned user. Each intent is gated independently; the first failing
// recipient aborts the batch and rejects the message.
func (d *Dispatcher) handleMentions(ctx context.Context, data []byte) error {
	var p events.MentionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode mention payload: %w", err)
	}
	for _, intent := range events.MapMentions(p) {
		if err := d.createGated(ctx, intent); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) handleRSVP(ctx context.Context, data []byte) error {
	var p events.RSVPPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode rsvp payload: %w", err)
	}
	return d.createGated(ctx, events.MapRSVP(p))
}

func (d *Dispatcher) handleEventCancelled(ctx context.Context, data []byte) error {
	var p events.EventCancelledPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode event.cancelled payload: %w", err)
	}
	return d.createDirect(ctx, events.MapEventCancelled(p))
}

func (d *Dispatcher) handleBlock(ctx context.Context, data []byte) error {
	var p events.BlockPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode user.blocked payload: %w", err)
	}
	return d.createDirect(ctx, events.MapBlock(p))
}

func (d *Dispatcher) handleMessage(ctx context.Context, data []byte) error {
	var p events.MessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode message payload: %w", err)
	}
	return d.createGated(ctx, events.MapMessage(p))
}

func (d *Dispatcher) handleProfileSync(ctx context.Context, data []byte) error {
	var p events.ProfilePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode profile payload: %w", err)
	}
	if p.UserID == "" {
		return fmt.Errorf("profile payload missing user_id")
	}
	return d.profiles.Upsert(ctx, &models.SenderProfile{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Verified:    p.Verified,
	})
}

func (d *Dispatcher) handleProfileDelete(ctx context.Context, data []byte) error {
	var p events.UserDeletedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode user.deleted payload: %w", err)
	}
	if p.UserID == "" {
		return fmt.Errorf("user.deleted payload missing user_id")
	}
	return d.profiles.Delete(ctx, p.UserID)
}
