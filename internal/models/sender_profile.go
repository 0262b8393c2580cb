package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SenderProfile is a denormalized copy of the minimal public profile fields
// for users who can appear as notification senders. It is refreshed by
// user.registered/user.updated events and is strictly best-effort: its
// absence must never block notification creation.
type SenderProfile struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID      string             `json:"user_id" bson:"user_id"`
	Username    string             `json:"username" bson:"username"`
	DisplayName string             `json:"display_name" bson:"display_name"`
	AvatarURL   string             `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Verified    bool               `json:"verified" bson:"verified"`
	LastSynced  time.Time          `json:"last_synced" bson:"last_synced"`
}

// SenderSummary is the compact sender shape attached to outbound
// notification.created events.
type SenderSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ToSummary converts a cached profile to the outbound summary shape.
func (p *SenderProfile) ToSummary() *SenderSummary {
	return &SenderSummary{
		ID:        p.UserID,
		Username:  p.Username,
		AvatarURL: p.AvatarURL,
	}
}
