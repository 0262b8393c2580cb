package models

import "time"

// DeliveryChannel identifies an outbound notification channel. The pipeline
// only decides whether a channel is permitted; actual delivery over email or
// push is handled by downstream services.
type DeliveryChannel string

const (
	ChannelEmail DeliveryChannel = "email"
	ChannelPush  DeliveryChannel = "push"
	ChannelInApp DeliveryChannel = "in_app"
)

// ChannelSetting holds the per-channel toggles for a single notification type.
type ChannelSetting struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	InApp bool `json:"in_app"`
}

// QuietHours is a per-user window during which non-in-app channels are
// suppressed. If StartTime > EndTime the window wraps midnight
// (e.g. 22:00-08:00); otherwise it is a same-day window. The in-app channel
// deliberately ignores quiet hours so notifications still accumulate in the
// client even while push and email stay silent.
type QuietHours struct {
	Enabled   bool   `json:"enabled" gorm:"column:quiet_enabled"`
	StartTime string `json:"start_time" gorm:"column:quiet_start;size:5"` // "HH:MM"
	EndTime   string `json:"end_time" gorm:"column:quiet_end;size:5"`     // "HH:MM"
	Timezone  string `json:"timezone" gorm:"column:quiet_timezone;size:64"`
}

// NotificationPreferences is the per-user delivery preference record stored
// in PostgreSQL, created lazily with defaults on first access.
type NotificationPreferences struct {
	ID                 uint                                `json:"-" gorm:"primaryKey"`
	UserID             string                              `json:"user_id" gorm:"uniqueIndex;size:64"`
	EmailNotifications bool                                `json:"email_notifications"`
	PushNotifications  bool                                `json:"push_notifications"`
	InAppNotifications bool                                `json:"in_app_notifications"`
	Preferences        map[NotificationType]ChannelSetting `json:"preferences" gorm:"serializer:json"`
	QuietHours         QuietHours                          `json:"quiet_hours" gorm:"embedded"`
	CreatedAt          time.Time                           `json:"created_at"`
	UpdatedAt          time.Time                           `json:"updated_at"`
}

// DefaultPreferences returns a preference record seeded with per-type
// defaults. Social activity defaults to push+in-app, account security flows
// to email, and urgent types to every channel.
func DefaultPreferences(userID string) *NotificationPreferences {
	prefs := make(map[NotificationType]ChannelSetting, len(AllNotificationTypes))
	for _, t := range AllNotificationTypes {
		prefs[t] = defaultChannelSetting(t)
	}
	return &NotificationPreferences{
		UserID:             userID,
		EmailNotifications: true,
		PushNotifications:  true,
		InAppNotifications: true,
		Preferences:        prefs,
		QuietHours: QuietHours{
			Enabled:   false,
			StartTime: "22:00",
			EndTime:   "08:00",
			Timezone:  "UTC",
		},
	}
}

func defaultChannelSetting(t NotificationType) ChannelSetting {
	switch t {
	case TypeLike, TypePostShare:
		return ChannelSetting{Email: false, Push: true, InApp: true}
	case TypeFollow, TypeComment, TypePostMention, TypeEventRSVP, TypeFriendRequest:
		return ChannelSetting{Email: false, Push: true, InApp: true}
	case TypeMessage, TypeEventInvite, TypeEventReminder:
		return ChannelSetting{Email: true, Push: true, InApp: true}
	case TypePasswordReset:
		return ChannelSetting{Email: true, Push: false, InApp: false}
	case TypeAccountVerification:
		return ChannelSetting{Email: true, Push: false, InApp: true}
	case TypeSecurityAlert, TypeSystem:
		return ChannelSetting{Email: true, Push: true, InApp: true}
	default:
		return ChannelSetting{Email: false, Push: true, InApp: true}
	}
}

// UpdatePreferencesRequest is a partial preference update: only supplied
// fields change. Type keys are validated against the known enumeration
// before the merge; unknown keys are rejected.
type UpdatePreferencesRequest struct {
	EmailNotifications *bool                               `json:"email_notifications,omitempty"`
	PushNotifications  *bool                               `json:"push_notifications,omitempty"`
	InAppNotifications *bool                               `json:"in_app_notifications,omitempty"`
	Preferences        map[NotificationType]ChannelSetting `json:"preferences,omitempty"`
	QuietHours         *QuietHoursRequest                  `json:"quiet_hours,omitempty"`
}

// QuietHoursRequest carries the quiet-hours portion of a preference update.
type QuietHoursRequest struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time" validate:"required,len=5,hhmm"`
	EndTime   string `json:"end_time" validate:"required,len=5,hhmm"`
	Timezone  string `json:"timezone" validate:"required,timezone"`
}

// Merge applies the supplied fields of req onto p.
func (p *NotificationPreferences) Merge(req *UpdatePreferencesRequest) {
	if req.EmailNotifications != nil {
		p.EmailNotifications = *req.EmailNotifications
	}
	if req.PushNotifications != nil {
		p.PushNotifications = *req.PushNotifications
	}
	if req.InAppNotifications != nil {
		p.InAppNotifications = *req.InAppNotifications
	}
	for t, setting := range req.Preferences {
		p.Preferences[t] = setting
	}
	if req.QuietHours != nil {
		p.QuietHours = QuietHours{
			Enabled:   req.QuietHours.Enabled,
			StartTime: req.QuietHours.StartTime,
			EndTime:   req.QuietHours.EndTime,
			Timezone:  req.QuietHours.Timezone,
		}
	}
}
