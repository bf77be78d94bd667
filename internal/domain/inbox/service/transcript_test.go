package service

import (
	"testing"
	"time"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
)

func TestNormalizeTranscriptSortsAscending(t *testing.T) {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		order  []int // minute offsets, in delivery order
		wantTx []string
	}{
		{"already sorted", []int{1, 2, 3}, []string{"m1", "m2", "m3"}},
		{"reversed", []int{3, 2, 1}, []string{"m1", "m2", "m3"}},
		{"shuffled", []int{2, 3, 1}, []string{"m1", "m2", "m3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []entity.ChatEvent
			for _, off := range tt.order {
				events = append(events, entity.ChatEvent{
					ID:         string(rune('0' + off)),
					SenderID:   "a",
					ReceiverID: subjectID,
					Message:    "m" + string(rune('0'+off)),
					CreatedAt:  base.Add(time.Duration(off) * time.Minute),
				})
			}

			msgs := NormalizeTranscript(events, subjectID)
			if len(msgs) != len(tt.wantTx) {
				t.Fatalf("got %d messages, want %d", len(msgs), len(tt.wantTx))
			}
			for i, want := range tt.wantTx {
				if msgs[i].Text != want {
					t.Errorf("msgs[%d].Text = %q, want %q", i, msgs[i].Text, want)
				}
			}
			for i := 1; i < len(msgs); i++ {
				if msgs[i].RawTimestamp.Before(msgs[i-1].RawTimestamp) {
					t.Errorf("timestamps not ascending at index %d", i)
				}
			}
		})
	}
}

func TestNormalizeTranscriptTagsSenderRole(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	events := []entity.ChatEvent{
		{ID: "1", SenderID: subjectID, ReceiverID: "a", Message: "from me", CreatedAt: at},
		{ID: "2", SenderID: "a", ReceiverID: subjectID, Message: "from them", CreatedAt: at.Add(time.Minute), IsRead: true},
	}

	msgs := NormalizeTranscript(events, subjectID)
	if !msgs[0].IsFromSubject {
		t.Error("subject-sent message not tagged IsFromSubject")
	}
	if msgs[1].IsFromSubject {
		t.Error("counterpart message wrongly tagged IsFromSubject")
	}
	if !msgs[1].IsRead {
		t.Error("read flag lost in normalization")
	}
	if msgs[0].SenderID != subjectID {
		t.Errorf("sender id = %q, want %q", msgs[0].SenderID, subjectID)
	}
}

func TestNormalizeTranscriptSkipsMalformed(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	events := []entity.ChatEvent{
		{ID: "", SenderID: "a", ReceiverID: subjectID, Message: "dropped", CreatedAt: at},
		{ID: "2", SenderID: "a", ReceiverID: subjectID, Message: "kept", CreatedAt: at},
	}

	msgs := NormalizeTranscript(events, subjectID)
	if len(msgs) != 1 || msgs[0].Text != "kept" {
		t.Errorf("malformed event not skipped: %+v", msgs)
	}
}
