package service

import (
	"sort"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
	"github.com/vadim/market-inbox/internal/domain/inbox/timefmt"
)

// NormalizeTranscript converts raw conversation events into transcript
// messages, tagging each with the sender role and display time, and sorts
// them ascending by timestamp. The backend does not guarantee order and
// the day-grouping view model requires ascending input, so the sort is
// mandatory.
func NormalizeTranscript(events []entity.ChatEvent, subjectID string) []entity.Message {
	msgs := make([]entity.Message, 0, len(events))
	for _, ev := range events {
		if !ev.Valid() {
			continue
		}
		msgs = append(msgs, entity.Message{
			ID:            ev.ID,
			Text:          ev.Message,
			SenderID:      ev.SenderID,
			IsFromSubject: ev.SenderID == subjectID,
			DisplayTime:   timefmt.MessageClock(ev.CreatedAt),
			RawTimestamp:  ev.CreatedAt,
			IsRead:        ev.IsRead,
		})
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].RawTimestamp.Before(msgs[j].RawTimestamp)
	})

	return msgs
}
