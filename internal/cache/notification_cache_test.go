package cache

import (
	"context"
	"testing"

	"github.com/waveline/notification-service/internal/models"
)

func TestListKeyDistinguishesFilters(t *testing.T) {
	tests := []struct {
		name string
		opts models.ListOptions
		want string
	}{
		{
			"defaults",
			models.ListOptions{Page: 1, Limit: 20},
			"notifications:u1:page:1:limit:20:type:all:unread:false",
		},
		{
			"unread only",
			models.ListOptions{Page: 1, Limit: 20, UnreadOnly: true},
			"notifications:u1:page:1:limit:20:type:all:unread:true",
		},
		{
			"type filter",
			models.ListOptions{Page: 2, Limit: 50, Type: models.TypeFollow},
			"notifications:u1:page:2:limit:50:type:FOLLOW:unread:false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listKey("u1", tt.opts); got != tt.want {
				t.Errorf("listKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnreadKey(t *testing.T) {
	if got := unreadKey("u1"); got != "notifications:u1:unread_count" {
		t.Errorf("unreadKey = %q", got)
	}
}

func TestNilClientDisablesCache(t *testing.T) {
	c := NewNotificationCache(nil, 0, 0)
	ctx := context.Background()

	if _, _, ok := c.GetList(ctx, "u1", models.ListOptions{Page: 1, Limit: 20}); ok {
		t.Error("nil client must always miss")
	}
	if _, ok := c.GetUnreadCount(ctx, "u1"); ok {
		t.Error("nil client must always miss")
	}
	c.SetList(ctx, "u1", models.ListOptions{Page: 1, Limit: 20}, nil, models.PageMeta{})
	c.SetUnreadCount(ctx, "u1", 5)
	if err := c.InvalidateRecipient(ctx, "u1"); err != nil {
		t.Errorf("InvalidateRecipient with nil client = %v, want nil", err)
	}
}
