package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
	"github.com/vadim/market-inbox/internal/domain/inbox/store"
	"github.com/vadim/market-inbox/internal/domain/inbox/viewer"
	"github.com/vadim/market-inbox/internal/httpx/response"
)

// ViewerRegistry defines the viewer-session operations the handler needs
type ViewerRegistry interface {
	Open(subjectID string) (*viewer.Viewer, error)
	Get(id string) (*viewer.Viewer, error)
	Close(id string) error
}

// ViewerHandler handles HTTP requests for admin message-viewer sessions
type ViewerHandler struct {
	registry ViewerRegistry
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(registry ViewerRegistry) *ViewerHandler {
	return &ViewerHandler{registry: registry}
}

// RegisterRoutes registers viewer routes
func (h *ViewerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/viewers", func(r chi.Router) {
		// Open a viewer session for a subject user
		r.Post("/", h.Open())

		r.Route("/{viewerId}", func(r chi.Router) {
			// Ranked conversation list
			r.Get("/inbox", h.Inbox())

			// Day-grouped transcript of the open conversation
			r.Get("/transcript", h.Transcript())

			// Switch the open conversation
			r.Post("/select", h.Select())

			// Immediate out-of-band refresh
			r.Post("/refresh", h.Refresh())

			// Per-fetch-type loading/error status
			r.Get("/status", h.Status())

			// Close the session
			r.Delete("/", h.Close())
		})
	})
}

// OpenViewerRequest represents the request to open a viewer session
type OpenViewerRequest struct {
	SubjectID string `json:"subject_id"`
}

// OpenViewerResponse represents the response to opening a viewer session
type OpenViewerResponse struct {
	ViewerID  string `json:"viewer_id"`
	SubjectID string `json:"subject_id"`
}

// Open handles POST /viewers
func (h *ViewerHandler) Open() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenViewerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}

		v, err := h.registry.Open(req.SubjectID)
		if err != nil {
			handleViewerError(w, err)
			return
		}

		response.Created(w, OpenViewerResponse{
			ViewerID:  v.ID,
			SubjectID: v.SubjectID,
		})
	}
}

// InboxResponse represents the ranked conversation list
type InboxResponse struct {
	Summaries []entity.ConversationSummary `json:"summaries"`
	Selected  string                       `json:"selected,omitempty"`
}

// Inbox handles GET /viewers/{viewerId}/inbox
func (h *ViewerHandler) Inbox() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.registry.Get(chi.URLParam(r, "viewerId"))
		if err != nil {
			handleViewerError(w, err)
			return
		}

		response.OK(w, InboxResponse{
			Summaries: v.Summaries(),
			Selected:  v.Selected(),
		})
	}
}

// TranscriptResponse represents the day-grouped transcript
type TranscriptResponse struct {
	CounterpartID string            `json:"counterpart_id"`
	Days          []entity.DayGroup `json:"days"`
}

// Transcript handles GET /viewers/{viewerId}/transcript
func (h *ViewerHandler) Transcript() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.registry.Get(chi.URLParam(r, "viewerId"))
		if err != nil {
			handleViewerError(w, err)
			return
		}

		selected := v.Selected()
		if selected == "" {
			response.NotFound(w, entity.ErrNoSelection.Error())
			return
		}

		response.OK(w, TranscriptResponse{
			CounterpartID: selected,
			Days:          v.Transcript(),
		})
	}
}

// SelectRequest represents the request to switch conversations
type SelectRequest struct {
	CounterpartID string `json:"counterpart_id"`
}

// Select handles POST /viewers/{viewerId}/select
func (h *ViewerHandler) Select() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.registry.Get(chi.URLParam(r, "viewerId"))
		if err != nil {
			handleViewerError(w, err)
			return
		}

		var req SelectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
		if req.CounterpartID == "" {
			response.BadRequest(w, "counterpart_id is required")
			return
		}

		v.Select(req.CounterpartID)
		response.NoContent(w)
	}
}

// Refresh handles POST /viewers/{viewerId}/refresh
func (h *ViewerHandler) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.registry.Get(chi.URLParam(r, "viewerId"))
		if err != nil {
			handleViewerError(w, err)
			return
		}

		v.RefreshNow()
		response.NoContent(w)
	}
}

// StatusResponse represents per-fetch-type status
type StatusResponse struct {
	Inbox      store.Status `json:"inbox"`
	Transcript store.Status `json:"transcript"`
}

// Status handles GET /viewers/{viewerId}/status
func (h *ViewerHandler) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.registry.Get(chi.URLParam(r, "viewerId"))
		if err != nil {
			handleViewerError(w, err)
			return
		}

		status := v.Status()
		response.OK(w, StatusResponse{
			Inbox:      status[store.FetchInbox],
			Transcript: status[store.FetchTranscript],
		})
	}
}

// Close handles DELETE /viewers/{viewerId}
func (h *ViewerHandler) Close() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.registry.Close(chi.URLParam(r, "viewerId")); err != nil {
			handleViewerError(w, err)
			return
		}
		response.NoContent(w)
	}
}

// handleViewerError maps domain errors to HTTP responses
func handleViewerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrViewerNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrSubjectRequired):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
