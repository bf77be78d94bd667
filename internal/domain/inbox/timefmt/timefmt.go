// Package timefmt converts absolute timestamps into the relative labels
// used by the inbox list and the day-grouped transcript view.
package timefmt

import (
	"fmt"
	"time"
)

const daysPerMonthWindow = 30

// InboxLabel formats a timestamp relative to now for the inbox list.
// Buckets are half-open: a value sitting exactly on a boundary rounds
// down into the coarser bucket (exactly 60s is "1 minutes ago", not
// "Just now").
func InboxLabel(ts, now time.Time) string {
	age := now.Sub(ts)
	if age < 0 {
		age = 0
	}

	switch {
	case age < time.Minute:
		return "Just now"
	case age < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(age.Hours()))
	case age < daysPerMonthWindow*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(age.Hours()/24))
	default:
		return ts.Format("Jan 2, 2006")
	}
}

// DayHeaderLabel formats a day-group header. Today/Yesterday are decided
// by local calendar-day equality, not by 24-hour subtraction, so a span
// from 23:00 to 01:00 still crosses from "Yesterday" into "Today".
func DayHeaderLabel(date, now time.Time) string {
	switch {
	case sameDay(date, now):
		return "Today"
	case sameDay(date, now.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return date.Format("Monday, January 2, 2006")
	}
}

// DateKey returns the local calendar-date key used to group messages.
func DateKey(ts time.Time) string {
	return ts.Format("2006-01-02")
}

// MessageClock formats the wall-clock time shown next to each transcript
// message.
func MessageClock(ts time.Time) string {
	return ts.Format("15:04")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
