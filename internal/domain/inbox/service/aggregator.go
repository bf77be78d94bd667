package service

import (
	"sort"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
	"github.com/vadim/market-inbox/internal/domain/inbox/timefmt"
)

// Aggregate reduces a flat batch of raw chat events into one ranked
// summary per distinct counterpart. It is a pure function: summaries are
// fully recomputed from the batch on every call, never patched.
//
// The latest message wins the summary text/time; two events with an
// identical timestamp keep the first-seen value. Unread counts accumulate
// across all events toward the subject regardless of which event won.
// Malformed events are skipped without aborting the rest of the batch.
func Aggregate(events []entity.ChatEvent, subjectID string) []entity.ConversationSummary {
	acc := make(map[string]*entity.ConversationSummary)

	for _, ev := range events {
		if !ev.Valid() {
			continue
		}
		counterpartID := ev.CounterpartID(subjectID)
		if counterpartID == "" {
			continue
		}

		sum, ok := acc[counterpartID]
		if !ok {
			sum = &entity.ConversationSummary{
				Counterpart: entity.Counterpart{ID: counterpartID},
			}
			acc[counterpartID] = sum
			applyLatest(sum, ev, subjectID)
		} else if ev.CreatedAt.After(sum.LastMessageAt) {
			applyLatest(sum, ev, subjectID)
		}

		// Unread accumulation is independent of the latest-wins overwrite.
		if ev.SenderID != subjectID && !ev.IsRead {
			sum.UnreadCount++
		}
	}

	out := make([]entity.ConversationSummary, 0, len(acc))
	for _, sum := range acc {
		out = append(out, *sum)
	}

	// Descending by last message time; counterpart id breaks ties so the
	// output is deterministic for a fixed batch.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].Counterpart.ID < out[j].Counterpart.ID
	})

	return out
}

func applyLatest(sum *entity.ConversationSummary, ev entity.ChatEvent, subjectID string) {
	sum.LastMessageText = ev.Message
	sum.LastMessageAt = ev.CreatedAt
	sum.IsLastFromSubject = ev.SenderID == subjectID
	sum.RankKey = ev.CreatedAt.UnixMilli()

	// Some backend payloads carry the sender's display data inline; keep
	// it when the counterpart was the sender, as a fallback for profile
	// enrichment.
	if ev.SenderID == sum.Counterpart.ID {
		if ev.SenderName != "" {
			sum.Counterpart.DisplayName = ev.SenderName
		}
		if ev.SenderAvatarURL != "" {
			sum.Counterpart.AvatarURL = ev.SenderAvatarURL
		}
	}
}

// labelSummaries stamps the relative inbox labels onto a freshly
// aggregated batch.
func labelSummaries(summaries []entity.ConversationSummary) {
	now := timeNow()
	for i := range summaries {
		summaries[i].LastMessageLabel = timefmt.InboxLabel(summaries[i].LastMessageAt, now)
	}
}
