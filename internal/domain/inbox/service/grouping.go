package service

import (
	"time"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
	"github.com/vadim/market-inbox/internal/domain/inbox/timefmt"
)

// GroupByDay derives the day-grouped render data for a transcript.
// Input must already be ascending by RawTimestamp (NormalizeTranscript
// guarantees this), so first-occurrence order of each calendar date is
// automatically chronological.
func GroupByDay(messages []entity.Message, now time.Time) []entity.DayGroup {
	var groups []entity.DayGroup
	index := make(map[string]int)

	for _, msg := range messages {
		key := timefmt.DateKey(msg.RawTimestamp)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, entity.DayGroup{
				DateKey:     key,
				HeaderLabel: timefmt.DayHeaderLabel(msg.RawTimestamp, now),
			})
		}
		groups[i].Messages = append(groups[i].Messages, msg)
	}

	return groups
}
