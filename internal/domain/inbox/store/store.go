// Package store holds the per-viewer-session conversation state: ranked
// summaries, the current selection, and the transcript cache. The store
// is the only shared mutable state between the polling loops and user
// actions; its invariants (first-refresh-only auto-select, stale-response
// discard) are what keep overlapping asynchronous refreshes from tearing
// the view.
package store

import (
	"sync"
	"time"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
)

// FetchKind distinguishes the two refresh pipelines for status reporting
type FetchKind string

const (
	FetchInbox      FetchKind = "inbox"
	FetchTranscript FetchKind = "transcript"
)

// Status is the per-fetch-type loading/error pair exposed to the
// presentational layer.
type Status struct {
	Loading       bool      `json:"loading"`
	LastError     string    `json:"last_error,omitempty"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
}

// Store is the conversation state for one viewer session
type Store struct {
	mu sync.RWMutex

	summaries   []entity.ConversationSummary
	selected    string
	transcripts map[string][]entity.Message

	firstRefreshDone bool
	status           map[FetchKind]Status
}

// New creates an empty store
func New() *Store {
	return &Store{
		transcripts: make(map[string][]entity.Message),
		status: map[FetchKind]Status{
			FetchInbox:      {},
			FetchTranscript: {},
		},
	}
}

// ApplyInboxRefresh replaces the summary list wholesale. On the very
// first successful refresh of the session, if nothing is selected yet,
// the top-ranked summary is auto-selected. Later refreshes never touch
// the selection, so the open conversation cannot be swapped out from
// under the operator. Returns the counterpart auto-selected by this call,
// or "" if the selection was left alone.
func (s *Store) ApplyInboxRefresh(summaries []entity.ConversationSummary) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries = summaries
	s.markSuccess(FetchInbox)

	if s.firstRefreshDone {
		return ""
	}
	s.firstRefreshDone = true

	if s.selected == "" && len(summaries) > 0 {
		s.selected = summaries[0].Counterpart.ID
		return s.selected
	}
	return ""
}

// ApplyTranscriptRefresh replaces the cached transcript for the
// counterpart the request was issued for. The write is discarded when
// the selection has moved on since the request was made (stale-response
// discard); reports whether the refresh was applied.
func (s *Store) ApplyTranscriptRefresh(requestedID string, messages []entity.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if requestedID != s.selected {
		return false
	}

	s.transcripts[requestedID] = messages
	s.markSuccess(FetchTranscript)
	return true
}

// Select sets the current counterpart. It never fetches; the scheduler
// and the viewer's out-of-band refresh react to the change. Reports
// whether the selection actually changed.
func (s *Store) Select(counterpartID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == counterpartID {
		return false
	}
	s.selected = counterpartID
	return true
}

// Selected returns the currently selected counterpart id, "" when none
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Summaries returns a copy of the current ranked summary list
func (s *Store) Summaries() []entity.ConversationSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.ConversationSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// Transcript returns a copy of the cached transcript for a counterpart
func (s *Store) Transcript(counterpartID string) []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cached, ok := s.transcripts[counterpartID]
	if !ok {
		return nil
	}
	out := make([]entity.Message, len(cached))
	copy(out, cached)
	return out
}

// HasSummaries reports whether any inbox refresh has populated the list
func (s *Store) HasSummaries() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries) > 0
}

// SetLoading flips the loading flag for one fetch type
func (s *Store) SetLoading(kind FetchKind, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status[kind]
	st.Loading = loading
	s.status[kind] = st
}

// SetError records a failed fetch. Cached data is left untouched: a
// failed refresh must never blank an already-populated view.
func (s *Store) SetError(kind FetchKind, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status[kind]
	st.Loading = false
	st.LastError = err.Error()
	s.status[kind] = st
}

// StatusSnapshot returns the current status for both fetch types
func (s *Store) StatusSnapshot() map[FetchKind]Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[FetchKind]Status, len(s.status))
	for k, v := range s.status {
		out[k] = v
	}
	return out
}

// caller must hold s.mu
func (s *Store) markSuccess(kind FetchKind) {
	st := s.status[kind]
	st.Loading = false
	st.LastError = ""
	st.LastSuccessAt = time.Now()
	s.status[kind] = st
}
