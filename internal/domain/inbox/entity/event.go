package entity

import "time"

// ChatEvent is a single raw chat record as delivered by the marketplace
// backend. Events are append-only on the backend side; the client never
// mutates them.
type ChatEvent struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`

	// Optional display data carried inline by some backend payload shapes.
	// Empty when the backend only sends ids.
	SenderName      string `json:"sender_name,omitempty"`
	SenderAvatarURL string `json:"sender_avatar_url,omitempty"`
}

// Valid reports whether the event carries the fields required for
// aggregation. Invalid events are skipped, never fatal.
func (e ChatEvent) Valid() bool {
	return e.ID != "" && !e.CreatedAt.IsZero()
}

// CounterpartID returns the non-subject side of the event. For a
// self-addressed event the receiver is returned.
func (e ChatEvent) CounterpartID(subjectID string) string {
	if e.SenderID != subjectID {
		return e.SenderID
	}
	return e.ReceiverID
}
