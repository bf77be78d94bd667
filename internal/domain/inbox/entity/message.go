package entity

import "time"

// Message is a normalized transcript entry. Messages belong to exactly one
// counterpart's transcript and are replaced wholesale on every transcript
// refresh for that counterpart.
type Message struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	SenderID      string    `json:"sender_id"`
	IsFromSubject bool      `json:"is_from_subject"`
	DisplayTime   string    `json:"display_time"`
	RawTimestamp  time.Time `json:"raw_timestamp"`
	IsRead        bool      `json:"is_read"`
}

// DayGroup is one calendar day of a transcript, derived on demand for
// rendering and never persisted. Messages inside a group share the same
// local calendar date and are ordered ascending by RawTimestamp.
type DayGroup struct {
	DateKey     string    `json:"date_key"`
	HeaderLabel string    `json:"header_label"`
	Messages    []Message `json:"messages"`
}
