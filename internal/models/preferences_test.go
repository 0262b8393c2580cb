package models

import "testing"

func TestDefaultPreferencesCoverEveryType(t *testing.T) {
	prefs := DefaultPreferences("u1")

	if len(prefs.Preferences) != len(AllNotificationTypes) {
		t.Fatalf("defaults cover %d types, want %d", len(prefs.Preferences), len(AllNotificationTypes))
	}
	for _, typ := range AllNotificationTypes {
		if _, ok := prefs.Preferences[typ]; !ok {
			t.Errorf("missing default for %s", typ)
		}
	}
	if !prefs.EmailNotifications || !prefs.PushNotifications || !prefs.InAppNotifications {
		t.Error("master switches must default on")
	}
	if prefs.QuietHours.Enabled {
		t.Error("quiet hours must default off")
	}
}

func TestDefaultChannelSettings(t *testing.T) {
	prefs := DefaultPreferences("u1")

	tests := []struct {
		typ  NotificationType
		want ChannelSetting
	}{
		{TypeLike, ChannelSetting{Email: false, Push: true, InApp: true}},
		{TypeFollow, ChannelSetting{Email: false, Push: true, InApp: true}},
		{TypeMessage, ChannelSetting{Email: true, Push: true, InApp: true}},
		{TypePasswordReset, ChannelSetting{Email: true, Push: false, InApp: false}},
		{TypeSecurityAlert, ChannelSetting{Email: true, Push: true, InApp: true}},
		{TypeSystem, ChannelSetting{Email: true, Push: true, InApp: true}},
	}
	for _, tt := range tests {
		if got := prefs.Preferences[tt.typ]; got != tt.want {
			t.Errorf("%s default = %+v, want %+v", tt.typ, got, tt.want)
		}
	}
}

func TestMergeAppliesOnlySuppliedFields(t *testing.T) {
	prefs := DefaultPreferences("u1")
	off := false

	prefs.Merge(&UpdatePreferencesRequest{
		EmailNotifications: &off,
		Preferences: map[NotificationType]ChannelSetting{
			TypeLike: {Email: true, Push: false, InApp: true},
		},
	})

	if prefs.EmailNotifications {
		t.Error("email master switch not applied")
	}
	if !prefs.PushNotifications || !prefs.InAppNotifications {
		t.Error("untouched master switches must keep their values")
	}
	if got := prefs.Preferences[TypeLike]; got != (ChannelSetting{Email: true, Push: false, InApp: true}) {
		t.Errorf("LIKE setting = %+v after merge", got)
	}
	if got := prefs.Preferences[TypeComment]; got != defaultChannelSetting(TypeComment) {
		t.Errorf("untouched COMMENT setting changed: %+v", got)
	}
}

func TestMergeQuietHours(t *testing.T) {
	prefs := DefaultPreferences("u1")

	prefs.Merge(&UpdatePreferencesRequest{
		QuietHours: &QuietHoursRequest{
			Enabled:   true,
			StartTime: "23:00",
			EndTime:   "07:30",
			Timezone:  "America/New_York",
		},
	})

	want := QuietHours{Enabled: true, StartTime: "23:00", EndTime: "07:30", Timezone: "America/New_York"}
	if prefs.QuietHours != want {
		t.Errorf("quiet hours = %+v, want %+v", prefs.QuietHours, want)
	}
}

func TestNotificationTypeIsValid(t *testing.T) {
	for _, typ := range AllNotificationTypes {
		if !typ.IsValid() {
			t.Errorf("%s must be valid", typ)
		}
	}
	if NotificationType("NOT_A_TYPE").IsValid() {
		t.Error("unknown type must be invalid")
	}
}

func TestListOptionsNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        ListOptions
		wantPage  int
		wantLimit int
	}{
		{"zero values", ListOptions{}, 1, DefaultPageSize},
		{"negative page", ListOptions{Page: -3, Limit: 10}, 1, 10},
		{"limit capped", ListOptions{Page: 2, Limit: 500}, 2, MaxPageSize},
		{"in range", ListOptions{Page: 4, Limit: 50}, 4, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Normalize()
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
				t.Errorf("Normalize() = page %d limit %d, want %d/%d", got.Page, got.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}
