package events

import (
	"fmt"

	"github.com/waveline/notification-service/internal/models"
)

// Mappers translate domain event payloads into notification intents. They
// are pure: no I/O, no clock, no store access. A nil intent means the event
// warrants no notification, which is a normal outcome.

// MapFollow maps user.followed to a FOLLOW intent for the followed user.
func MapFollow(p FollowPayload) *models.Intent {
	return &models.Intent{
		RecipientID:   p.FollowingID,
		SenderID:      p.FollowerID,
		Type:          models.TypeFollow,
		Title:         "New follower",
		Message:       fmt.Sprintf("%s started following you", p.FollowerUsername),
		ReferenceID:   p.FollowerID,
		ReferenceType: models.RefUser,
		Priority:      models.PriorityMedium,
		Metadata: map[string]interface{}{
			"follower_id":       p.FollowerID,
			"follower_username": p.FollowerUsername,
		},
	}
}

// MapLike maps post.liked to a LIKE intent for the post author.
func MapLike(p LikePayload) *models.Intent {
	return &models.Intent{
		RecipientID:   p.PostAuthorID,
		SenderID:      p.LikerID,
		Type:          models.TypeLike,
		Title:         "New like",
		Message:       fmt.Sprintf("%s liked your post", p.LikerUsername),
		ReferenceID:   p.PostID,
		ReferenceType: models.RefPost,
		Priority:      models.PriorityLow,
		Metadata: map[string]interface{}{
			"post_id":        p.PostID,
			"liker_id":       p.LikerID,
			"liker_username": p.LikerUsername,
		},
	}
}

// MapComment maps post.commented to a COMMENT intent for the post author.
func MapComment(p CommentPayload) *models.Intent {
	return &models.Intent{
		RecipientID:   p.PostAuthorID,
		SenderID:      p.CommenterID,
		Type:          models.TypeComment,
		Title:         "New comment",
		Message:       fmt.Sprintf("%s commented on your post", p.CommenterUsername),
		ReferenceID:   p.PostID,
		ReferenceType: models.RefPost,
		Priority:      models.PriorityHigh,
		Metadata: map[string]interface{}{
			"post_id":            p.PostID,
			"comment_id":         p.CommentID,
			"commenter_id":       p.CommenterID,
			"commenter_username": p.CommenterUsername,
		},
	}
}

// MapShare maps post.shared to a POST_SHARE intent for the post author.
func MapShare(p SharePayload) *models.Intent {
	return &models.Intent{
		RecipientID:   p.PostAuthorID,
		SenderID:      p.SharerID,
		Type:          models.TypePostShare,
		Title:         "Post shared",
		Message:       fmt.Sprintf("%s shared your post", p.SharerUsername),
		ReferenceID:   p.PostID,
		ReferenceType: models.RefPost,
		Priority:      models.PriorityLow,
		Metadata: map[string]interface{}{
			"post_id":         p.PostID,
			"sharer_id":       p.SharerID,
			"sharer_username": p.SharerUsername,
		},
	}
}

// MapMentions maps post.mentioned to one POST_MENTION intent per mentioned
// user (fan-out within a single inbound event).
func MapMentions(p MentionPayload) []*models.Intent {
	intents := make([]*models.Intent, 0, len(p.MentionedUserIDs))
	for _, userID := range p.MentionedUserIDs {
		intents = append(intents, &models.Intent{
			RecipientID:   userID,
			SenderID:      p.AuthorID,
			Type:          models.TypePostMention,
			Title:         "You were mentioned",
			Message:       fmt.Sprintf("%s mentioned you in a post", p.AuthorUsername),
			ReferenceID:   p.PostID,
			ReferenceType: models.RefPost,
			Priority:      models.PriorityHigh,
			Metadata: map[string]interface{}{
				"post_id":           p.PostID,
				"author_id":         p.AuthorID,
				"author_username":   p.AuthorUsername,
				"mentioned_user_id": userID,
			},
		})
	}
	return intents
}

// MapRSVP maps event.rsvp.added to an EVENT_RSVP intent for the event
// creator. The RSVP status is part of the message.
func MapRSVP(p RSVPPayload) *models.Intent {
	return &models.Intent{
		RecipientID:   p.CreatorID,
		SenderID:      p.UserID,
		Type:          models.TypeEventRSVP,
		Title:         "New RSVP",
		Message:       fmt.Sprintf("%s responded %q to %s", p.Username, p.Status, p.EventTitle),
		ReferenceID:   p.EventID,
		ReferenceType: models.RefEvent,
		Priority:      models.PriorityMedium,
		Metadata: map[string]interface{}{
			"event_id":    p.EventID,
			"event_title": p.EventTitle,
			"user_id":     p.UserID,
			"username":    p.Username,
			"status":      p.Status,
		},
	}
}

// MapEventCancelled maps event.cancelled to a SYSTEM intent for the event
// creator. This path bypasses the preference gate: cancellations are
// system-critical and always created.
func MapEventCancelled(p EventCancelledPayload) *models.Intent {
	return &models.Intent{
		RecipientID:   p.CreatorID,
		Type:          models.TypeSystem,
		Title:         "Event cancelled",
		Message:       fmt.Sprintf("Your event %q has been cancelled", p.EventTitle),
		ReferenceID:   p.EventID,
		ReferenceType: models.RefEvent,
		Priority:      models.PriorityHigh,
		Metadata: map[string]interface{}{
			"event_id":    p.EventID,
			"event_title": p.EventTitle,
		},
	}
}

// MapBlock maps user.blocked to a SECURITY_ALERT intent for the blocked
// user. Like event cancellation, it bypasses the preference gate.
func MapBlock(p BlockPayload) *models.Intent {
	return &models.Intent{
		RecipientID:   p.BlockedUserID,
		Type:          models.TypeSecurityAlert,
		Title:         "Account restriction",
		Message:       "Your interactions with another account have been restricted",
		ReferenceID:   p.BlockedUserID,
		ReferenceType: models.RefUser,
		Priority:      models.PriorityHigh,
		Metadata: map[string]interface{}{
			"blocked_user_id": p.BlockedUserID,
		},
	}
}

// MapMessage maps message.sent to a MESSAGE intent for the recipient.
// Self-messages never notify: when the sender and recipient are the same
// user the mapper returns nil.
func MapMessage(p MessagePayload) *models.Intent {
	if p.SenderID == p.RecipientID {
		return nil
	}
	return &models.Intent{
		RecipientID:   p.RecipientID,
		SenderID:      p.SenderID,
		Type:          models.TypeMessage,
		Title:         "New message",
		Message:       fmt.Sprintf("%s sent you a message", p.SenderUsername),
		ReferenceID:   p.ConversationID,
		ReferenceType: models.RefMessage,
		Priority:      models.PriorityHigh,
		Metadata: map[string]interface{}{
			"message_id":      p.MessageID,
			"conversation_id": p.ConversationID,
			"sender_id":       p.SenderID,
			"sender_username": p.SenderUsername,
		},
	}
}
