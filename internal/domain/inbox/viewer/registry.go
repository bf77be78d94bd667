package viewer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
	"github.com/vadim/market-inbox/internal/domain/inbox/scheduler"
)

// Registry tracks the open viewer sessions and expires the ones their
// operator abandoned, so a closed browser tab does not keep polling the
// backend forever.
type Registry struct {
	fetcher Fetcher
	cfg     scheduler.Config
	ttl     time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	viewers map[string]*Viewer

	janitorStop chan struct{}
	janitorWG   sync.WaitGroup
	janitorOnce sync.Once
}

// NewRegistry creates a viewer registry
func NewRegistry(fetcher Fetcher, cfg scheduler.Config, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &Registry{
		fetcher:     fetcher,
		cfg:         cfg,
		ttl:         ttl,
		logger:      logger,
		viewers:     make(map[string]*Viewer),
		janitorStop: make(chan struct{}),
	}
}

// Open creates and starts a viewer session for a subject user
func (r *Registry) Open(subjectID string) (*Viewer, error) {
	if subjectID == "" {
		return nil, entity.ErrSubjectRequired
	}

	v := New(uuid.New().String(), subjectID, r.fetcher, r.cfg, r.logger)

	r.mu.Lock()
	r.viewers[v.ID] = v
	r.mu.Unlock()

	v.Start()
	r.logger.Info("viewer opened", "viewer_id", v.ID, "subject_id", subjectID)
	return v, nil
}

// Get returns an open viewer and records the access for idle expiry
func (r *Registry) Get(id string) (*Viewer, error) {
	r.mu.Lock()
	v, ok := r.viewers[id]
	r.mu.Unlock()

	if !ok {
		return nil, entity.ErrViewerNotFound
	}
	v.Touch()
	return v, nil
}

// Close tears down one viewer session
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	v, ok := r.viewers[id]
	delete(r.viewers, id)
	r.mu.Unlock()

	if !ok {
		return entity.ErrViewerNotFound
	}
	v.Close()
	return nil
}

// CloseAll tears down every open session and stops the janitor. Called on
// application shutdown.
func (r *Registry) CloseAll() {
	r.janitorOnce.Do(func() { close(r.janitorStop) })
	r.janitorWG.Wait()

	r.mu.Lock()
	viewers := make([]*Viewer, 0, len(r.viewers))
	for _, v := range r.viewers {
		viewers = append(viewers, v)
	}
	r.viewers = make(map[string]*Viewer)
	r.mu.Unlock()

	for _, v := range viewers {
		v.Close()
	}
}

// Count returns the number of open sessions
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.viewers)
}

// StartJanitor launches the idle-session sweeper
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval == 0 {
		interval = time.Minute
	}

	r.janitorWG.Add(1)
	go func() {
		defer r.janitorWG.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-r.janitorStop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Viewer
	for id, v := range r.viewers {
		if v.IdleSince().Before(cutoff) {
			expired = append(expired, v)
			delete(r.viewers, id)
		}
	}
	r.mu.Unlock()

	for _, v := range expired {
		v.Close()
		r.logger.Info("idle viewer expired", "viewer_id", v.ID, "subject_id", v.SubjectID)
	}
}
