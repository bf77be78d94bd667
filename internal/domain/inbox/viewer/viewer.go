// Package viewer ties one admin message-viewer session together: a
// conversation store, a polling scheduler, and the fetch service. A
// Viewer is an explicitly constructed, explicitly torn-down context
// object; two viewers watching different subjects share nothing, so they
// cannot cross-contaminate.
package viewer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
	"github.com/vadim/market-inbox/internal/domain/inbox/scheduler"
	"github.com/vadim/market-inbox/internal/domain/inbox/service"
	"github.com/vadim/market-inbox/internal/domain/inbox/store"
)

// Fetcher is the slice of the inbox service a viewer needs
type Fetcher interface {
	FetchInbox(ctx context.Context, subjectID string) ([]entity.ConversationSummary, error)
	FetchTranscript(ctx context.Context, subjectID, counterpartID string) ([]entity.Message, error)
}

// Viewer is one open message-viewer session for a subject user
type Viewer struct {
	ID        string
	SubjectID string

	fetcher Fetcher
	store   *store.Store
	sched   *scheduler.Scheduler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	closed    bool

	mu           sync.Mutex
	lastAccessed time.Time
}

// New constructs a viewer session. Start must be called before the
// polling loops run.
func New(id, subjectID string, fetcher Fetcher, cfg scheduler.Config, logger *slog.Logger) *Viewer {
	ctx, cancel := context.WithCancel(context.Background())

	v := &Viewer{
		ID:           id,
		SubjectID:    subjectID,
		fetcher:      fetcher,
		store:        store.New(),
		logger:       logger.With("viewer_id", id, "subject_id", subjectID),
		ctx:          ctx,
		cancel:       cancel,
		lastAccessed: time.Now(),
	}
	v.sched = scheduler.New(v, v.store, cfg, v.logger)
	return v
}

// Start launches the session's polling loops
func (v *Viewer) Start() {
	v.sched.Start(v.ctx)
}

// Close tears the session down: both polling loops stop and in-flight
// fetches are cancelled. Idempotent, and guaranteed to release the timers
// no matter why the viewer is closing.
func (v *Viewer) Close() {
	v.closeOnce.Do(func() {
		v.mu.Lock()
		v.closed = true
		v.mu.Unlock()

		v.cancel()
		v.sched.Stop()
		v.logger.Info("viewer closed")
	})
}

// SyncInbox fetches the subject's inbox, aggregates it, and applies the
// result to the store. Fetch errors are recovered into store state, never
// propagated: a missed poll must not crash the viewer.
func (v *Viewer) SyncInbox(ctx context.Context) {
	v.store.SetLoading(store.FetchInbox, true)

	summaries, err := v.fetcher.FetchInbox(ctx, v.SubjectID)
	if err != nil {
		v.store.SetError(store.FetchInbox, err)
		v.logger.Warn("inbox refresh failed", "error", err)
		return
	}

	if picked := v.store.ApplyInboxRefresh(summaries); picked != "" {
		// First refresh auto-selected the top conversation; pull its
		// transcript right away instead of waiting for the next tick.
		go v.SyncTranscript(v.ctx, picked)
	}
}

// SyncTranscript fetches one counterpart's transcript and applies it,
// keyed by the counterpart id captured here at request time. If the
// operator has moved on by the time the response lands, the store
// discards it.
func (v *Viewer) SyncTranscript(ctx context.Context, counterpartID string) {
	v.store.SetLoading(store.FetchTranscript, true)

	messages, err := v.fetcher.FetchTranscript(ctx, v.SubjectID, counterpartID)
	if err != nil {
		v.store.SetError(store.FetchTranscript, err)
		v.logger.Warn("transcript refresh failed", "counterpart_id", counterpartID, "error", err)
		return
	}

	if !v.store.ApplyTranscriptRefresh(counterpartID, messages) {
		v.store.SetLoading(store.FetchTranscript, false)
		v.logger.Debug("stale transcript response discarded", "counterpart_id", counterpartID)
	}
}

// Select switches the open conversation and triggers an immediate
// out-of-band transcript fetch for the new target. The transcript
// ticker's countdown is not reset.
func (v *Viewer) Select(counterpartID string) {
	if v.store.Select(counterpartID) && counterpartID != "" {
		go v.SyncTranscript(v.ctx, counterpartID)
	}
}

// RefreshNow triggers immediate out-of-band fetches for the inbox and,
// when a conversation is open, its transcript. Neither ticker is reset.
func (v *Viewer) RefreshNow() {
	go v.SyncInbox(v.ctx)
	if selected := v.store.Selected(); selected != "" {
		go v.SyncTranscript(v.ctx, selected)
	}
}

// Summaries returns the current ranked conversation list
func (v *Viewer) Summaries() []entity.ConversationSummary {
	return v.store.Summaries()
}

// Selected returns the currently open counterpart id
func (v *Viewer) Selected() string {
	return v.store.Selected()
}

// Transcript returns the day-grouped transcript of the open conversation
func (v *Viewer) Transcript() []entity.DayGroup {
	selected := v.store.Selected()
	if selected == "" {
		return nil
	}
	return service.GroupByDay(v.store.Transcript(selected), time.Now())
}

// Status returns the loading/error pair for both fetch types
func (v *Viewer) Status() map[store.FetchKind]store.Status {
	return v.store.StatusSnapshot()
}

// Touch records viewer activity for idle expiry
func (v *Viewer) Touch() {
	v.mu.Lock()
	v.lastAccessed = time.Now()
	v.mu.Unlock()
}

// IdleSince returns the time of the last access
func (v *Viewer) IdleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastAccessed
}
