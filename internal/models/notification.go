package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies what kind of activity a notification describes.
type NotificationType string

const (
	TypeFollow              NotificationType = "FOLLOW"
	TypeLike                NotificationType = "LIKE"
	TypeComment             NotificationType = "COMMENT"
	TypeEventInvite         NotificationType = "EVENT_INVITE"
	TypeEventRSVP           NotificationType = "EVENT_RSVP"
	TypePostMention         NotificationType = "POST_MENTION"
	TypeSystem              NotificationType = "SYSTEM"
	TypeMessage             NotificationType = "MESSAGE"
	TypePostShare           NotificationType = "POST_SHARE"
	TypeEventReminder       NotificationType = "EVENT_REMINDER"
	TypeFriendRequest       NotificationType = "FRIEND_REQUEST"
	TypeAccountVerification NotificationType = "ACCOUNT_VERIFICATION"
	TypePasswordReset       NotificationType = "PASSWORD_RESET"
	TypeSecurityAlert       NotificationType = "SECURITY_ALERT"
)

// AllNotificationTypes lists every known notification type. Preference
// defaults and the update validator iterate this list, so adding a type here
// is the single place a new type has to be registered.
var AllNotificationTypes = []NotificationType{
	TypeFollow, TypeLike, TypeComment, TypeEventInvite, TypeEventRSVP,
	TypePostMention, TypeSystem, TypeMessage, TypePostShare, TypeEventReminder,
	TypeFriendRequest, TypeAccountVerification, TypePasswordReset, TypeSecurityAlert,
}

// IsValid reports whether t is one of the known notification types.
func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Priority indicates how urgently a notification should be surfaced.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ReferenceType identifies the kind of resource a notification points at.
type ReferenceType string

const (
	RefPost    ReferenceType = "POST"
	RefEvent   ReferenceType = "EVENT"
	RefUser    ReferenceType = "USER"
	RefMessage ReferenceType = "MESSAGE"
	RefComment ReferenceType = "COMMENT"
)

// Notification represents a per-user notification stored in MongoDB.
// RecipientID and SenderID are cross-service user identifiers; no referential
// integrity is enforced against the user service.
type Notification struct {
	ID            primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID   string                 `json:"recipient_id" bson:"recipient_id"`
	SenderID      string                 `json:"sender_id,omitempty" bson:"sender_id,omitempty"`
	Type          NotificationType       `json:"type" bson:"type"`
	Title         string                 `json:"title" bson:"title"`
	Message       string                 `json:"message" bson:"message"`
	ReferenceID   string                 `json:"reference_id,omitempty" bson:"reference_id,omitempty"`
	ReferenceType ReferenceType          `json:"reference_type,omitempty" bson:"reference_type,omitempty"`
	IsRead        bool                   `json:"is_read" bson:"is_read"`
	ReadAt        *time.Time             `json:"read_at,omitempty" bson:"read_at,omitempty"`
	Priority      Priority               `json:"priority" bson:"priority"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" bson:"updated_at"`
}

// Title and message length limits enforced at creation time.
const (
	MaxTitleLen   = 200
	MaxMessageLen = 1000
)

// Intent is the unsaved result of mapping a domain event to notification
// fields. It carries everything a Notification does except identity,
// timestamps and read state. A nil *Intent from a mapper means the event
// warrants no notification.
type Intent struct {
	RecipientID   string
	SenderID      string
	Type          NotificationType
	Title         string
	Message       string
	ReferenceID   string
	ReferenceType ReferenceType
	Priority      Priority
	Metadata      map[string]interface{}
}

// ListOptions shapes a paginated notification listing query.
type ListOptions struct {
	Page       int
	Limit      int
	Type       NotificationType // empty means all types
	UnreadOnly bool
	Ascending  bool // default is newest-first
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging parameters to their allowed ranges.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
}

// PageMeta describes the pagination of a listing result.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	PerPage     int   `json:"per_page"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// TypeStat holds the unread/read breakdown for one notification type.
type TypeStat struct {
	Unread int64 `json:"unread" bson:"unread"`
	Read   int64 `json:"read" bson:"read"`
}

// NotificationStats aggregates a recipient's notification counts.
type NotificationStats struct {
	Total  int64                         `json:"total"`
	Unread int64                         `json:"unread"`
	Read   int64                         `json:"read"`
	ByType map[NotificationType]TypeStat `json:"by_type"`
}
