package events

import (
	"encoding/json"
	"testing"
)

func TestUnwrapEnvelope(t *testing.T) {
	body := []byte(`{"type":"user.followed","data":{"follower_id":"A","following_id":"B"},"timestamp":"2024-01-01T00:00:00Z","service":"social"}`)

	data := Unwrap(body)

	var p FollowPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("failed to decode unwrapped payload: %v", err)
	}
	if p.FollowerID != "A" || p.FollowingID != "B" {
		t.Errorf("payload = %+v, want follower A following B", p)
	}
}

func TestUnwrapBarePayload(t *testing.T) {
	body := []byte(`{"follower_id":"A","following_id":"B"}`)

	data := Unwrap(body)

	var p FollowPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if p.FollowerID != "A" {
		t.Errorf("follower = %q, want A", p.FollowerID)
	}
}

func TestUnwrapInvalidJSONReturnsBody(t *testing.T) {
	body := []byte(`not json at all`)
	if got := Unwrap(body); string(got) != string(body) {
		t.Errorf("Unwrap(%q) = %q, want original body", body, got)
	}
}
