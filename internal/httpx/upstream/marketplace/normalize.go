package marketplace

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
)

// The backend's payload shapes are inconsistent: ids arrive as strings or
// numbers, read flags as booleans or 0/1, timestamps as RFC3339 or unix
// epoch, and sender display data either inline or nested. Everything is
// normalized here so the core logic never touches an optional field.

// flexString decodes a JSON string or number into a string
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexBool decodes a JSON bool, 0/1 number, or "0"/"1"/"true"/"false"
// string
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "":
		*f = false
		return nil
	case "true", `"true"`, "1", `"1"`:
		*f = true
		return nil
	case "false", `"false"`, "0", `"0"`:
		*f = false
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		*f = false
		return nil
	}
	*f = flexBool(b)
	return nil
}

// flexTime decodes RFC3339, "2006-01-02 15:04:05", or unix epoch
// seconds/milliseconds
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = flexTime(time.Time{})
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if ts, err := time.Parse(layout, s); err == nil {
				*f = flexTime(ts)
				return nil
			}
		}
		// Unparseable timestamps leave the event invalid; the aggregator
		// skips it rather than aborting the batch.
		*f = flexTime(time.Time{})
		return nil
	}

	num, err := strconv.ParseInt(strings.TrimSuffix(string(data), ".0"), 10, 64)
	if err != nil {
		*f = flexTime(time.Time{})
		return nil
	}
	// Millisecond epochs are 13 digits for contemporary dates.
	if num > 1e12 {
		*f = flexTime(time.UnixMilli(num))
	} else {
		*f = flexTime(time.Unix(num, 0))
	}
	return nil
}

// rawUser is the nested sender/receiver shape some payloads carry
type rawUser struct {
	ID     flexString `json:"id"`
	Name   string     `json:"name"`
	Avatar string     `json:"avatar"`
}

// rawChatEvent is a chat record as the backend actually emits it
type rawChatEvent struct {
	ID         flexString `json:"id"`
	SenderID   flexString `json:"sender_id"`
	ReceiverID flexString `json:"receiver_id"`
	Message    string     `json:"message"`
	Body       string     `json:"body"`
	CreatedAt  flexTime   `json:"created_at"`
	IsRead     flexBool   `json:"is_read"`

	SenderName   string   `json:"sender_name"`
	SenderAvatar string   `json:"sender_avatar"`
	Sender       *rawUser `json:"sender"`
	Receiver     *rawUser `json:"receiver"`
}

type eventListResponse struct {
	Data []rawChatEvent `json:"data"`
}

type rawProfile struct {
	ID        flexString `json:"id"`
	Name      string     `json:"name"`
	FullName  string     `json:"full_name"`
	AvatarURL string     `json:"avatar_url"`
	Avatar    string     `json:"avatar"`
	Role      string     `json:"role"`
	Email     string     `json:"email"`
}

type profileResponse struct {
	Data rawProfile `json:"data"`
}

func (r rawChatEvent) normalize() entity.ChatEvent {
	ev := entity.ChatEvent{
		ID:         string(r.ID),
		SenderID:   string(r.SenderID),
		ReceiverID: string(r.ReceiverID),
		Message:    firstNonEmpty(r.Message, r.Body),
		CreatedAt:  time.Time(r.CreatedAt),
		IsRead:     bool(r.IsRead),
	}

	ev.SenderName = r.SenderName
	ev.SenderAvatarURL = r.SenderAvatar
	if r.Sender != nil {
		if ev.SenderID == "" {
			ev.SenderID = string(r.Sender.ID)
		}
		if ev.SenderName == "" {
			ev.SenderName = r.Sender.Name
		}
		if ev.SenderAvatarURL == "" {
			ev.SenderAvatarURL = r.Sender.Avatar
		}
	}
	if r.Receiver != nil && ev.ReceiverID == "" {
		ev.ReceiverID = string(r.Receiver.ID)
	}

	return ev
}

func (r rawProfile) normalize() entity.Profile {
	return entity.Profile{
		ID:        string(r.ID),
		Name:      firstNonEmpty(r.Name, r.FullName),
		AvatarURL: firstNonEmpty(r.AvatarURL, r.Avatar),
		Role:      r.Role,
		Email:     r.Email,
	}
}

func normalizeEvents(raw []rawChatEvent) []entity.ChatEvent {
	events := make([]entity.ChatEvent, 0, len(raw))
	for _, r := range raw {
		events = append(events, r.normalize())
	}
	return events
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
