package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
	"github.com/vadim/market-inbox/internal/httpx/response"
)

// ArchiveReader defines read access to the event archive
type ArchiveReader interface {
	GetStatistics(ctx context.Context, filter entity.StatisticsFilter) (*entity.Statistics, error)
	GetHeatmap(ctx context.Context, filter entity.StatisticsFilter) (*entity.Heatmap, error)
}

// StatisticsHandler handles HTTP requests for archived messaging
// statistics. The archive is optional; when it is not configured the
// handler reports the feature unavailable rather than failing.
type StatisticsHandler struct {
	archive ArchiveReader
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(archive ArchiveReader) *StatisticsHandler {
	return &StatisticsHandler{archive: archive}
}

// RegisterRoutes registers statistics routes
func (h *StatisticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/statistics", h.GetStatistics())
	r.Get("/heatmap", h.GetHeatmap())
}

// GetStatistics handles GET /statistics
func (h *StatisticsHandler) GetStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.archive == nil {
			response.ServiceUnavailable(w, entity.ErrArchiveDisabled.Error())
			return
		}

		filter, ok := parseStatisticsFilter(w, r)
		if !ok {
			return
		}

		stats, err := h.archive.GetStatistics(r.Context(), filter)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.OK(w, stats)
	}
}

// GetHeatmap handles GET /heatmap
func (h *StatisticsHandler) GetHeatmap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.archive == nil {
			response.ServiceUnavailable(w, entity.ErrArchiveDisabled.Error())
			return
		}

		filter, ok := parseStatisticsFilter(w, r)
		if !ok {
			return
		}

		heatmap, err := h.archive.GetHeatmap(r.Context(), filter)
		if err != nil {
			response.InternalError(w, err.Error())
			return
		}
		response.OK(w, heatmap)
	}
}

func parseStatisticsFilter(w http.ResponseWriter, r *http.Request) (entity.StatisticsFilter, bool) {
	subjectID := r.URL.Query().Get("subject_id")
	if subjectID == "" {
		response.BadRequest(w, "subject_id is required")
		return entity.StatisticsFilter{}, false
	}

	// Default period: the trailing 30 days.
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if s := r.URL.Query().Get("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			response.BadRequest(w, "start_date must be YYYY-MM-DD")
			return entity.StatisticsFilter{}, false
		}
		start = parsed
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			response.BadRequest(w, "end_date must be YYYY-MM-DD")
			return entity.StatisticsFilter{}, false
		}
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	return entity.StatisticsFilter{
		SubjectID: subjectID,
		StartDate: start,
		EndDate:   end,
	}, true
}
