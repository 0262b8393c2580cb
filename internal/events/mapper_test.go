package events

import (
	"testing"

	"github.com/waveline/notification-service/internal/models"
)

func TestMapFollow(t *testing.T) {
	intent := MapFollow(FollowPayload{
		FollowerID:       "A",
		FollowerUsername: "alice",
		FollowingID:      "B",
	})

	if intent == nil {
		t.Fatal("expected an intent, got nil")
	}
	if intent.RecipientID != "B" {
		t.Errorf("recipient = %q, want %q", intent.RecipientID, "B")
	}
	if intent.SenderID != "A" {
		t.Errorf("sender = %q, want %q", intent.SenderID, "A")
	}
	if intent.Type != models.TypeFollow {
		t.Errorf("type = %q, want %q", intent.Type, models.TypeFollow)
	}
	if intent.ReferenceID != "A" || intent.ReferenceType != models.RefUser {
		t.Errorf("reference = %q/%q, want A/USER", intent.ReferenceID, intent.ReferenceType)
	}
	if intent.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want MEDIUM", intent.Priority)
	}
}

func TestMapMessageSuppressesSelfMessages(t *testing.T) {
	intent := MapMessage(MessagePayload{
		SenderID:    "same-user",
		RecipientID: "same-user",
	})
	if intent != nil {
		t.Fatalf("self-message should not produce an intent, got %+v", intent)
	}
}

func TestMapMessage(t *testing.T) {
	intent := MapMessage(MessagePayload{
		MessageID:      "m1",
		ConversationID: "c1",
		SenderID:       "A",
		SenderUsername: "alice",
		RecipientID:    "B",
	})

	if intent == nil {
		t.Fatal("expected an intent, got nil")
	}
	if intent.Type != models.TypeMessage {
		t.Errorf("type = %q, want MESSAGE", intent.Type)
	}
	if intent.ReferenceID != "c1" || intent.ReferenceType != models.RefMessage {
		t.Errorf("reference = %q/%q, want c1/MESSAGE", intent.ReferenceID, intent.ReferenceType)
	}
	if intent.Priority != models.PriorityHigh {
		t.Errorf("priority = %q, want HIGH", intent.Priority)
	}
}

func TestMapMentionsFanOut(t *testing.T) {
	payload := MentionPayload{
		PostID:           "p1",
		AuthorID:         "author",
		AuthorUsername:   "writer",
		MentionedUserIDs: []string{"u1", "u2", "u3"},
	}

	intents := MapMentions(payload)
	if len(intents) != 3 {
		t.Fatalf("got %d intents, want 3", len(intents))
	}
	for i, want := range []string{"u1", "u2", "u3"} {
		intent := intents[i]
		if intent.RecipientID != want {
			t.Errorf("intent %d recipient = %q, want %q", i, intent.RecipientID, want)
		}
		if intent.Type != models.TypePostMention {
			t.Errorf("intent %d type = %q, want POST_MENTION", i, intent.Type)
		}
		if got := intent.Metadata["mentioned_user_id"]; got != want {
			t.Errorf("intent %d mentioned_user_id = %v, want %q", i, got, want)
		}
	}
}

func TestMapMentionsEmpty(t *testing.T) {
	if intents := MapMentions(MentionPayload{PostID: "p1"}); len(intents) != 0 {
		t.Fatalf("got %d intents for empty mention list, want 0", len(intents))
	}
}

func TestMappedPriorities(t *testing.T) {
	tests := []struct {
		name   string
		intent *models.Intent
		want   models.Priority
	}{
		{"like", MapLike(LikePayload{PostAuthorID: "a", LikerID: "b"}), models.PriorityLow},
		{"comment", MapComment(CommentPayload{PostAuthorID: "a", CommenterID: "b"}), models.PriorityHigh},
		{"share", MapShare(SharePayload{PostAuthorID: "a", SharerID: "b"}), models.PriorityLow},
		{"rsvp", MapRSVP(RSVPPayload{CreatorID: "a", UserID: "b"}), models.PriorityMedium},
		{"cancelled", MapEventCancelled(EventCancelledPayload{CreatorID: "a"}), models.PriorityHigh},
		{"blocked", MapBlock(BlockPayload{BlockedUserID: "a"}), models.PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.intent == nil {
				t.Fatal("expected an intent, got nil")
			}
			if tt.intent.Priority != tt.want {
				t.Errorf("priority = %q, want %q", tt.intent.Priority, tt.want)
			}
		})
	}
}

func TestMapRSVPIncludesStatus(t *testing.T) {
	intent := MapRSVP(RSVPPayload{
		EventID:    "e1",
		EventTitle: "Launch party",
		CreatorID:  "host",
		UserID:     "guest",
		Username:   "gwen",
		Status:     "going",
	})

	if intent.RecipientID != "host" {
		t.Errorf("recipient = %q, want host", intent.RecipientID)
	}
	if got := intent.Metadata["status"]; got != "going" {
		t.Errorf("metadata status = %v, want going", got)
	}
	if intent.Message == "" || intent.Message == intent.Title {
		t.Errorf("message should describe the RSVP, got %q", intent.Message)
	}
}
