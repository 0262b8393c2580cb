package repositories

import (
	"errors"
	"strings"
	"testing"

	"github.com/waveline/notification-service/internal/models"
)

func TestValidateNotificationLengthsAreCharacters(t *testing.T) {
	base := models.Notification{
		RecipientID: "B",
		Type:        models.TypeMessage,
		Title:       "t",
		Message:     "m",
	}

	tests := []struct {
		name    string
		mutate  func(n *models.Notification)
		wantErr bool
	}{
		{
			// 150 characters, 450 bytes
			"multi-byte title within limit",
			func(n *models.Notification) { n.Title = strings.Repeat("通", 150) },
			false,
		},
		{
			"title at the limit",
			func(n *models.Notification) { n.Title = strings.Repeat("通", models.MaxTitleLen) },
			false,
		},
		{
			"title one over the limit",
			func(n *models.Notification) { n.Title = strings.Repeat("通", models.MaxTitleLen+1) },
			true,
		},
		{
			"multi-byte message at the limit",
			func(n *models.Notification) { n.Message = strings.Repeat("é", models.MaxMessageLen) },
			false,
		},
		{
			"message one over the limit",
			func(n *models.Notification) { n.Message = strings.Repeat("é", models.MaxMessageLen+1) },
			true,
		},
		{
			"empty title",
			func(n *models.Notification) { n.Title = "" },
			true,
		},
		{
			"missing recipient",
			func(n *models.Notification) { n.RecipientID = "" },
			true,
		},
		{
			"unknown type",
			func(n *models.Notification) { n.Type = "NOT_A_TYPE" },
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := base
			tt.mutate(&n)
			err := validateNotification(&n)
			if tt.wantErr && !errors.Is(err, ErrInvalidNotification) {
				t.Errorf("validateNotification = %v, want ErrInvalidNotification", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateNotification = %v, want nil", err)
			}
		})
	}
}
