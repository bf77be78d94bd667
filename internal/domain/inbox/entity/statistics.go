package entity

import "time"

// Statistics represents messaging activity over a period, computed from
// the archived event stream.
type Statistics struct {
	TotalConversations    int   `json:"total_conversations"`
	UniqueCounterparts    int   `json:"unique_counterparts"`
	TotalMessagesSent     int   `json:"total_messages_sent"`
	TotalMessagesReceived int   `json:"total_messages_received"`
	UnreadMessages        int   `json:"unread_messages"`
	BusiestDay            int   `json:"busiest_day"`  // 0=Sunday, 6=Saturday
	BusiestHour           int   `json:"busiest_hour"` // 0-23
}

// HeatmapCell represents a single cell in the activity heatmap
type HeatmapCell struct {
	Day   int `json:"day"`   // 0=Sunday, 6=Saturday
	Hour  int `json:"hour"`  // 0-23
	Count int `json:"count"` // Number of messages
}

// Heatmap represents activity distribution by day and hour
type Heatmap struct {
	Cells []HeatmapCell `json:"cells"`
}

// StatisticsFilter for querying archived statistics
type StatisticsFilter struct {
	SubjectID string
	StartDate time.Time
	EndDate   time.Time
}

// DayNames for statistics display
var DayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
