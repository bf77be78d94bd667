package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
	"github.com/vadim/market-inbox/internal/domain/inbox/scheduler"
	"github.com/vadim/market-inbox/internal/domain/inbox/viewer"
)

type stubFetcher struct {
	summaries  []entity.ConversationSummary
	transcript []entity.Message
}

func (s *stubFetcher) FetchInbox(ctx context.Context, subjectID string) ([]entity.ConversationSummary, error) {
	return s.summaries, nil
}

func (s *stubFetcher) FetchTranscript(ctx context.Context, subjectID, counterpartID string) ([]entity.Message, error) {
	return s.transcript, nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *viewer.Registry) {
	t.Helper()

	at := time.Now().Add(-time.Hour)
	fetcher := &stubFetcher{
		summaries: []entity.ConversationSummary{
			{Counterpart: entity.Counterpart{ID: "a"}, LastMessageAt: at, LastMessageText: "hello"},
		},
		transcript: []entity.Message{
			{ID: "1", Text: "hello", RawTimestamp: at},
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Idle tickers; the priming fetch on open still populates the store.
	registry := viewer.NewRegistry(fetcher, scheduler.Config{
		InboxInterval:      time.Hour,
		TranscriptInterval: time.Hour,
	}, time.Minute, logger)
	t.Cleanup(registry.CloseAll)

	r := chi.NewRouter()
	NewViewerHandler(registry).RegisterRoutes(r)
	return r, registry
}

func openViewer(t *testing.T, router *chi.Mux) string {
	t.Helper()

	body := bytes.NewBufferString(`{"subject_id": "subj"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/viewers/", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("open viewer: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp OpenViewerResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding open response: %v", err)
	}
	return resp.ViewerID
}

func waitForInbox(t *testing.T, router *chi.Mux, viewerID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewers/"+viewerID+"/inbox", nil))
		var resp InboxResponse
		if json.NewDecoder(rec.Body).Decode(&resp) == nil && len(resp.Summaries) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("inbox never populated")
}

func TestOpenRequiresSubject(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/viewers/", bytes.NewBufferString(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestViewerLifecycleOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	id := openViewer(t, router)
	waitForInbox(t, router, id)

	// Inbox auto-selected the only conversation.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewers/"+id+"/inbox", nil))
	var inbox InboxResponse
	if err := json.NewDecoder(rec.Body).Decode(&inbox); err != nil {
		t.Fatalf("decoding inbox: %v", err)
	}
	if inbox.Selected != "a" {
		t.Errorf("selected = %q, want %q", inbox.Selected, "a")
	}

	// Status reports both fetch types.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewers/"+id+"/status", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status endpoint returned %d", rec.Code)
	}

	// Close, then every endpoint 404s.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/viewers/"+id+"/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("close returned %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewers/"+id+"/inbox", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("inbox after close returned %d, want 404", rec.Code)
	}
}

func TestSelectValidatesBody(t *testing.T) {
	router, _ := newTestRouter(t)
	id := openViewer(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/viewers/"+id+"/select", bytes.NewBufferString(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty counterpart_id accepted: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/viewers/"+id+"/select",
		bytes.NewBufferString(`{"counterpart_id": "a"}`)))
	if rec.Code != http.StatusNoContent {
		t.Errorf("valid select returned %d", rec.Code)
	}
}

func TestTranscriptWithoutSelection(t *testing.T) {
	router, _ := newTestRouter(t)

	// Fetcher with an empty inbox: nothing gets auto-selected.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := viewer.NewRegistry(&stubFetcher{}, scheduler.Config{
		InboxInterval:      time.Hour,
		TranscriptInterval: time.Hour,
	}, time.Minute, logger)
	t.Cleanup(registry.CloseAll)

	router = chi.NewRouter()
	NewViewerHandler(registry).RegisterRoutes(router)

	id := openViewer(t, router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewers/"+id+"/transcript", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("transcript without selection returned %d, want 404", rec.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	id := openViewer(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/viewers/"+id+"/refresh", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("refresh returned %d", rec.Code)
	}
}
