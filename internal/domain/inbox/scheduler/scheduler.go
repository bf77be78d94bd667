// Package scheduler drives the two periodic refresh loops of a viewer
// session: a slow inbox loop that always runs, and a fast transcript loop
// that only fires while a conversation is selected. The loops are fully
// independent clocks; manual refreshes go around them and never reset a
// countdown.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Syncer performs the actual fetch-and-store work for one viewer session.
// Implementations recover fetch errors into store state; a failed tick is
// retried on the next one.
type Syncer interface {
	SyncInbox(ctx context.Context)
	SyncTranscript(ctx context.Context, counterpartID string)
}

// SelectionSource reports the currently selected counterpart. Each
// transcript tick reads it anew, so a selection change redirects the next
// tick to the new target without restarting the loop.
type SelectionSource interface {
	Selected() string
}

// Scheduler owns the two polling loops of one viewer session
type Scheduler struct {
	syncer             Syncer
	selection          SelectionSource
	inboxInterval      time.Duration
	transcriptInterval time.Duration
	logger             *slog.Logger
	stopCh             chan struct{}
	cancel             context.CancelFunc
	wg                 sync.WaitGroup
	running            bool
	mu                 sync.Mutex
}

// Config holds polling cadence configuration
type Config struct {
	InboxInterval      time.Duration
	TranscriptInterval time.Duration
}

// New creates a scheduler for one viewer session
func New(syncer Syncer, selection SelectionSource, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.InboxInterval == 0 {
		cfg.InboxInterval = 15 * time.Second
	}
	if cfg.TranscriptInterval == 0 {
		cfg.TranscriptInterval = 5 * time.Second
	}

	return &Scheduler{
		syncer:             syncer,
		selection:          selection,
		inboxInterval:      cfg.InboxInterval,
		transcriptInterval: cfg.TranscriptInterval,
		logger:             logger,
		stopCh:             make(chan struct{}),
	}
}

// Start launches both polling loops. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true

	// Cancellable context so Stop can abort in-flight fetches
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Debug("viewer polling started",
		"inbox_interval", s.inboxInterval,
		"transcript_interval", s.transcriptInterval,
	)

	s.wg.Add(2)
	go s.runInbox(ctx)
	go s.runTranscript(ctx)
}

// Stop halts both loops and cancels in-flight fetches. Safe to call more
// than once and guaranteed to release both tickers regardless of why the
// viewer is closing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Debug("viewer polling stopped")
}

// runInbox is the inbox-level refresh loop. It runs whether or not a
// conversation is selected.
func (s *Scheduler) runInbox(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.inboxInterval)
	defer ticker.Stop()

	// Prime the list immediately so the viewer does not open blank.
	s.syncer.SyncInbox(ctx)

	for {
		select {
		case <-ticker.C:
			s.syncer.SyncInbox(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runTranscript is the transcript-level refresh loop. Ticks with no
// selection are skipped; the counterpart id is captured per tick so the
// stale-response guard in the store can key on it.
func (s *Scheduler) runTranscript(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.transcriptInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if target := s.selection.Selected(); target != "" {
				s.syncer.SyncTranscript(ctx, target)
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
