package marketplace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetInboxNormalizesLoosePayloads(t *testing.T) {
	// One clean record, one with numeric ids + unix millis + 0/1 read
	// flag, one with nested sender and "body" instead of "message".
	payload := `{"data": [
		{"id": "1", "sender_id": "7", "receiver_id": "subj", "message": "clean",
		 "created_at": "2025-03-10T10:00:00Z", "is_read": false},
		{"id": 2, "sender_id": 8, "receiver_id": "subj", "message": "numeric",
		 "created_at": 1741600800000, "is_read": 1},
		{"id": "3", "receiver_id": "subj", "body": "nested",
		 "created_at": "2025-03-10 11:00:00",
		 "sender": {"id": 9, "name": "Nested Nina", "avatar": "https://cdn/n.png"}}
	]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("user_id"); got != "subj" {
			t.Errorf("user_id = %q, want %q", got, "subj")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithAPIToken("tok"))

	events, err := c.GetInbox(context.Background(), "subj")
	if err != nil {
		t.Fatalf("GetInbox: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	if events[0].Message != "clean" || events[0].IsRead {
		t.Errorf("clean record mangled: %+v", events[0])
	}

	if events[1].ID != "2" || events[1].SenderID != "8" {
		t.Errorf("numeric ids not normalized: %+v", events[1])
	}
	if !events[1].IsRead {
		t.Error("numeric is_read=1 not normalized to true")
	}
	if events[1].CreatedAt.IsZero() {
		t.Error("unix-millis timestamp not parsed")
	}

	if events[2].SenderID != "9" || events[2].SenderName != "Nested Nina" {
		t.Errorf("nested sender not normalized: %+v", events[2])
	}
	if events[2].Message != "nested" {
		t.Errorf("body fallback not applied: %q", events[2].Message)
	}
	if events[2].CreatedAt.IsZero() {
		t.Error("space-separated timestamp not parsed")
	}
}

func TestGetInboxMalformedTimestampLeavesEventInvalid(t *testing.T) {
	payload := `{"data": [{"id": "1", "sender_id": "a", "receiver_id": "subj",
		"message": "bad time", "created_at": "not-a-date", "is_read": false}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))

	events, err := c.GetInbox(context.Background(), "subj")
	if err != nil {
		t.Fatalf("GetInbox: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Valid() {
		t.Error("event with unparseable timestamp should be invalid, not fatal")
	}
}

func TestGetConversationPassesBothIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("user_id") != "subj" || q.Get("counterpart_id") != "a" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	if _, err := c.GetConversation(context.Background(), "subj", "a"); err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
}

func TestErrorStatusReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message": "backend unavailable"}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))

	_, err := c.GetInbox(context.Background(), "subj")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "backend unavailable" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestErrorStatusWithoutBodyFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))

	_, err := c.GetProfile(context.Background(), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "Not Found" {
		t.Errorf("fallback message = %q", apiErr.Message)
	}
}

func TestGetProfileNormalizesAliases(t *testing.T) {
	payload := `{"data": {"id": 42, "full_name": "Frieda Freelancer",
		"avatar": "https://cdn/f.png", "role": "freelancer", "email": "f@example.com"}}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/users/42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))

	profile, err := c.GetProfile(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.ID != "42" || profile.Name != "Frieda Freelancer" || profile.AvatarURL != "https://cdn/f.png" {
		t.Errorf("profile not normalized: %+v", profile)
	}
}

func TestClientTimeoutConfigurable(t *testing.T) {
	c := New(WithHTTPClient(&http.Client{Timeout: time.Millisecond}))
	if c.httpClient.Timeout != time.Millisecond {
		t.Errorf("custom http client not applied")
	}
}
