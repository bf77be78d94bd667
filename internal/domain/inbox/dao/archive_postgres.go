package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
)

// ArchivePostgres stores observed chat events in PostgreSQL for the
// statistics endpoints. The archive is append-only: events are immutable
// at the backend, so conflicts on id are ignored except for the read
// flag, which the backend does flip.
//
// Expected table:
//
//	CREATE TABLE chat_events (
//	    id          TEXT PRIMARY KEY,
//	    subject_id  TEXT NOT NULL,
//	    sender_id   TEXT NOT NULL,
//	    receiver_id TEXT NOT NULL,
//	    message     TEXT NOT NULL DEFAULT '',
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    is_read     BOOLEAN NOT NULL DEFAULT FALSE,
//	    archived_at TIMESTAMPTZ NOT NULL
//	);
type ArchivePostgres struct {
	pool *pgxpool.Pool
}

// NewArchivePostgres creates a new PostgreSQL event archive
func NewArchivePostgres(pool *pgxpool.Pool) *ArchivePostgres {
	return &ArchivePostgres{pool: pool}
}

// ArchiveBatch inserts a batch of observed events, skipping malformed
// entries and already-archived ids
func (r *ArchivePostgres) ArchiveBatch(ctx context.Context, subjectID string, events []entity.ChatEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO chat_events (
			id, subject_id, sender_id, receiver_id, message, created_at, is_read, archived_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			is_read = EXCLUDED.is_read
	`

	now := time.Now()
	queued := 0
	for _, ev := range events {
		if !ev.Valid() {
			continue
		}
		batch.Queue(query,
			ev.ID,
			subjectID,
			ev.SenderID,
			ev.ReceiverID,
			ev.Message,
			ev.CreatedAt,
			ev.IsRead,
			now,
		)
		queued++
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < queued; i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("executing archive batch: %w", err)
		}
	}

	return nil
}

// GetStatistics calculates messaging statistics for a subject over a
// period
func (r *ArchivePostgres) GetStatistics(ctx context.Context, filter entity.StatisticsFilter) (*entity.Statistics, error) {
	query := `
		WITH events AS (
			SELECT
				sender_id,
				receiver_id,
				is_read,
				created_at,
				CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS counterpart_id,
				sender_id = $1 AS is_from_subject
			FROM chat_events
			WHERE subject_id = $1
			  AND created_at >= $2
			  AND created_at <= $3
		),
		totals AS (
			SELECT
				COUNT(DISTINCT counterpart_id) AS total_conversations,
				COUNT(DISTINCT CASE WHEN NOT is_from_subject THEN counterpart_id END) AS unique_counterparts,
				COUNT(*) FILTER (WHERE is_from_subject) AS sent,
				COUNT(*) FILTER (WHERE NOT is_from_subject) AS received,
				COUNT(*) FILTER (WHERE NOT is_from_subject AND NOT is_read) AS unread
			FROM events
		),
		busiest AS (
			SELECT
				EXTRACT(DOW FROM created_at)::int AS day,
				EXTRACT(HOUR FROM created_at)::int AS hour,
				COUNT(*) AS cnt
			FROM events
			GROUP BY 1, 2
			ORDER BY cnt DESC
			LIMIT 1
		)
		SELECT
			COALESCE(t.total_conversations, 0),
			COALESCE(t.unique_counterparts, 0),
			COALESCE(t.sent, 0),
			COALESCE(t.received, 0),
			COALESCE(t.unread, 0),
			COALESCE(b.day, 0),
			COALESCE(b.hour, 0)
		FROM totals t
		LEFT JOIN busiest b ON true
	`

	var stats entity.Statistics
	err := r.pool.QueryRow(ctx, query, filter.SubjectID, filter.StartDate, filter.EndDate).Scan(
		&stats.TotalConversations,
		&stats.UniqueCounterparts,
		&stats.TotalMessagesSent,
		&stats.TotalMessagesReceived,
		&stats.UnreadMessages,
		&stats.BusiestDay,
		&stats.BusiestHour,
	)
	if err != nil {
		return nil, fmt.Errorf("getting statistics: %w", err)
	}

	return &stats, nil
}

// GetHeatmap returns activity distribution by day of week and hour
func (r *ArchivePostgres) GetHeatmap(ctx context.Context, filter entity.StatisticsFilter) (*entity.Heatmap, error) {
	query := `
		SELECT
			EXTRACT(DOW FROM created_at)::int AS day,
			EXTRACT(HOUR FROM created_at)::int AS hour,
			COUNT(*) AS count
		FROM chat_events
		WHERE subject_id = $1
		  AND created_at >= $2
		  AND created_at <= $3
		GROUP BY 1, 2
		ORDER BY 1, 2
	`

	rows, err := r.pool.Query(ctx, query, filter.SubjectID, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("querying heatmap: %w", err)
	}
	defer rows.Close()

	var cells []entity.HeatmapCell
	for rows.Next() {
		var cell entity.HeatmapCell
		if err := rows.Scan(&cell.Day, &cell.Hour, &cell.Count); err != nil {
			return nil, fmt.Errorf("scanning heatmap row: %w", err)
		}
		cells = append(cells, cell)
	}

	return &entity.Heatmap{Cells: cells}, nil
}
