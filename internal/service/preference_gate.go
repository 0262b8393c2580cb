package service

import (
	"fmt"
	"time"

	"github.com/waveline/notification-service/internal/models"
	"github.com/waveline/notification-service/internal/repositories"
)

// PreferenceGate decides whether a notification intent may materialize for a
// given channel. It lazily creates default preferences on first check.
type PreferenceGate struct {
	prefs repositories.PreferenceRepository
	now   func() time.Time
}

// NewPreferenceGate creates a gate backed by the preference store.
func NewPreferenceGate(prefs repositories.PreferenceRepository) *PreferenceGate {
	return &PreferenceGate{prefs: prefs, now: time.Now}
}

// ShouldSend reports whether the (type, channel) pair is currently permitted
// for the user. Quiet hours suppress every channel except in-app, so the
// notification still accumulates in the client while push and email stay
// silent.
func (g *PreferenceGate) ShouldSend(userID string, t models.NotificationType, channel models.DeliveryChannel) (bool, error) {
	prefs, err := g.prefs.GetOrCreate(userID)
	if err != nil {
		return false, fmt.Errorf("failed to load preferences for %s: %w", userID, err)
	}

	if channel != models.ChannelInApp && WithinQuietHours(prefs.QuietHours, g.now()) {
		return false, nil
	}

	setting, ok := prefs.Preferences[t]
	if !ok {
		setting = models.ChannelSetting{} // unknown type defaults to off
	}

	switch channel {
	case models.ChannelEmail:
		return setting.Email && prefs.EmailNotifications, nil
	case models.ChannelPush:
		return setting.Push && prefs.PushNotifications, nil
	case models.ChannelInApp:
		return setting.InApp && prefs.InAppNotifications, nil
	default:
		return false, nil
	}
}

// WithinQuietHours reports whether now falls inside the configured window,
// evaluated in the window's own timezone. A start time later than the end
// time means the window wraps midnight (e.g. 22:00-08:00). Malformed
// configuration, including an unknown timezone, disables the window rather
// than suppressing delivery.
func WithinQuietHours(qh models.QuietHours, now time.Time) bool {
	if !qh.Enabled {
		return false
	}

	loc, err := time.LoadLocation(qh.Timezone)
	if err != nil {
		return false
	}
	local := now.In(loc)

	start, ok1 := parseClock(qh.StartTime)
	end, ok2 := parseClock(qh.EndTime)
	if !ok1 || !ok2 {
		return false
	}

	current := local.Hour()*60 + local.Minute()
	if start > end {
		// Overnight window: inside when after start or before end.
		return current >= start || current < end
	}
	return current >= start && current < end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
