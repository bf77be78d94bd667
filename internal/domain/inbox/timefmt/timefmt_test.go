package timefmt

import (
	"testing"
	"time"
)

func TestInboxLabel(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"zero age", now, "Just now"},
		{"under a minute", now.Add(-59 * time.Second), "Just now"},
		{"exactly one minute rounds down to minutes", now.Add(-60 * time.Second), "1 minutes ago"},
		{"half an hour", now.Add(-30 * time.Minute), "30 minutes ago"},
		{"exactly one hour", now.Add(-time.Hour), "1 hours ago"},
		{"under a day", now.Add(-23*time.Hour - 59*time.Minute), "23 hours ago"},
		{"exactly one day", now.Add(-24 * time.Hour), "1 days ago"},
		{"under a month", now.Add(-29 * 24 * time.Hour), "29 days ago"},
		{"exactly thirty days", now.Add(-30 * 24 * time.Hour), "Feb 13, 2025"},
		{"old message", time.Date(2024, time.December, 31, 10, 0, 0, 0, time.Local), "Dec 31, 2024"},
		{"future timestamp clamps to just now", now.Add(5 * time.Minute), "Just now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InboxLabel(tt.ts, now); got != tt.want {
				t.Errorf("InboxLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDayHeaderLabel(t *testing.T) {
	now := time.Date(2025, time.March, 15, 13, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"same day", time.Date(2025, time.March, 15, 0, 30, 0, 0, time.Local), "Today"},
		{"previous calendar day late evening", time.Date(2025, time.March, 14, 23, 0, 0, 0, time.Local), "Yesterday"},
		{"two days back", time.Date(2025, time.March, 13, 12, 0, 0, 0, time.Local), "Thursday, March 13, 2025"},
		{"far past", time.Date(2024, time.July, 1, 9, 0, 0, 0, time.Local), "Monday, July 1, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayHeaderLabel(tt.date, now); got != tt.want {
				t.Errorf("DayHeaderLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Calendar-day equality, not elapsed hours: 23:00 yesterday is "Yesterday"
// even though it is less than 24 hours ago, and 25 hours ago can still be
// "Yesterday" when it falls on the previous calendar date.
func TestDayHeaderLabelUsesCalendarDays(t *testing.T) {
	now := time.Date(2025, time.March, 15, 1, 0, 0, 0, time.Local)

	twoHoursAgo := now.Add(-2 * time.Hour) // 23:00 on March 14
	if got := DayHeaderLabel(twoHoursAgo, now); got != "Yesterday" {
		t.Errorf("DayHeaderLabel(23:00 prev day) = %q, want %q", got, "Yesterday")
	}
}

func TestDateKey(t *testing.T) {
	ts := time.Date(2025, time.January, 5, 23, 59, 59, 0, time.Local)
	if got := DateKey(ts); got != "2025-01-05" {
		t.Errorf("DateKey() = %q, want %q", got, "2025-01-05")
	}
}
