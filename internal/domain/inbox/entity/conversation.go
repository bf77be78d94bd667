package entity

import "time"

// Counterpart is the other participant of a one-to-one conversation,
// relative to the viewer's fixed subject user.
type Counterpart struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	RoleLabel    string `json:"role_label,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// ConversationSummary is one inbox row: the latest message exchanged with
// a counterpart plus the unread tally. Summaries are rebuilt from the raw
// event batch on every inbox refresh and never patched incrementally.
type ConversationSummary struct {
	Counterpart       Counterpart `json:"counterpart"`
	LastMessageText   string      `json:"last_message_text,omitempty"`
	LastMessageAt     time.Time   `json:"last_message_at"`
	LastMessageLabel  string      `json:"last_message_label,omitempty"`
	IsLastFromSubject bool        `json:"is_last_from_subject"`
	UnreadCount       int         `json:"unread_count"`
	RankKey           int64       `json:"rank_key"`
}

// Profile is counterpart display data resolved from the backend's user
// endpoint.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`
}
