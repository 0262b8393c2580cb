package events

import (
	"encoding/json"
	"time"
)

// Routing keys for every inbound domain event the service binds to. One
// logical queue is declared per key.
const (
	UserRegistered  = "user.registered"
	UserUpdated     = "user.updated"
	UserDeleted     = "user.deleted"
	UserFollowed    = "user.followed"
	UserUnfollowed  = "user.unfollowed"
	UserBlocked     = "user.blocked"
	UserOnline      = "user.online"
	UserOffline     = "user.offline"
	PostCreated     = "post.created"
	PostLiked       = "post.liked"
	PostCommented   = "post.commented"
	PostShared      = "post.shared"
	PostMentioned   = "post.mentioned"
	EventCreated    = "event.created"
	EventUpdated    = "event.updated"
	EventCancelled  = "event.cancelled"
	EventRSVPAdded  = "event.rsvp.added"
	EventRSVPRemove = "event.rsvp.removed"
	MessageSent     = "message.sent"
	MessageRead     = "message.read"
)

// NotificationCreated is the outbound routing key published after a
// notification is durably stored.
const NotificationCreated = "notification.created"

// Envelope is the wrapper some producers put around their payloads. When the
// data field is present the consumer unwraps it; otherwise the raw payload is
// treated as the data itself.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Service   string          `json:"service"`
}

// Unwrap returns the inner data payload of body, or body itself when no
// envelope is present.
func Unwrap(body []byte) []byte {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if len(env.Data) == 0 {
		return body
	}
	return env.Data
}

// FollowPayload carries a user.followed event.
type FollowPayload struct {
	FollowerID       string `json:"follower_id"`
	FollowerUsername string `json:"follower_username"`
	FollowingID      string `json:"following_id"`
}

// LikePayload carries a post.liked event.
type LikePayload struct {
	PostID        string `json:"post_id"`
	PostAuthorID  string `json:"post_author_id"`
	LikerID       string `json:"liker_id"`
	LikerUsername string `json:"liker_username"`
}

// CommentPayload carries a post.commented event.
type CommentPayload struct {
	PostID            string `json:"post_id"`
	PostAuthorID      string `json:"post_author_id"`
	CommentID         string `json:"comment_id"`
	CommenterID       string `json:"commenter_id"`
	CommenterUsername string `json:"commenter_username"`
	Preview           string `json:"preview,omitempty"`
}

// SharePayload carries a post.shared event.
type SharePayload struct {
	PostID         string `json:"post_id"`
	PostAuthorID   string `json:"post_author_id"`
	SharerID       string `json:"sharer_id"`
	SharerUsername string `json:"sharer_username"`
}

// MentionPayload carries a post.mentioned event. One POST_MENTION intent is
// produced per entry in MentionedUserIDs.
type MentionPayload struct {
	PostID           string   `json:"post_id"`
	AuthorID         string   `json:"author_id"`
	AuthorUsername   string   `json:"author_username"`
	MentionedUserIDs []string `json:"mentioned_user_ids"`
}

// RSVPPayload carries an event.rsvp.added event.
type RSVPPayload struct {
	EventID    string `json:"event_id"`
	EventTitle string `json:"event_title"`
	CreatorID  string `json:"creator_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Status     string `json:"status"`
}

// EventCancelledPayload carries an event.cancelled event.
type EventCancelledPayload struct {
	EventID    string `json:"event_id"`
	EventTitle string `json:"event_title"`
	CreatorID  string `json:"creator_id"`
}

// BlockPayload carries a user.blocked event.
type BlockPayload struct {
	BlockedUserID string `json:"blocked_user_id"`
	Reason        string `json:"reason,omitempty"`
}

// MessagePayload carries a message.sent event.
type MessagePayload struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	RecipientID    string `json:"recipient_id"`
	Preview        string `json:"preview,omitempty"`
}

// ProfilePayload carries user.registered and user.updated events, used to
// sync the sender profile cache.
type ProfilePayload struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Verified    bool   `json:"verified"`
}

// UserDeletedPayload carries a user.deleted event.
type UserDeletedPayload struct {
	UserID string `json:"user_id"`
}
