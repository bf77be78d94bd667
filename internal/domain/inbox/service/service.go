package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vadim/market-inbox/internal/domain/inbox/entity"
)

// timeNow is swapped out in tests
var timeNow = time.Now

// BackendClient defines the marketplace backend operations this service
// consumes. The backend is the sole writer of chat events; everything here
// is read-only.
type BackendClient interface {
	GetInbox(ctx context.Context, subjectID string) ([]entity.ChatEvent, error)
	GetConversation(ctx context.Context, subjectID, counterpartID string) ([]entity.ChatEvent, error)
}

// ProfileProvider resolves counterpart display data
type ProfileProvider interface {
	GetProfile(ctx context.Context, userID string) (*entity.Profile, error)
}

// AvatarMirror copies a remote avatar into owned storage and returns the
// mirrored public URL
type AvatarMirror interface {
	Mirror(ctx context.Context, counterpartID, sourceURL string) (string, error)
}

// EventSink archives observed chat events for statistics
type EventSink interface {
	ArchiveBatch(ctx context.Context, subjectID string, events []entity.ChatEvent) error
}

// Service fetches and normalizes inbox and transcript data for one or
// more viewer sessions. It holds no per-viewer state; all per-session
// state lives in the store.
type Service struct {
	backend  BackendClient
	profiles ProfileProvider
	avatars  AvatarMirror
	archive  EventSink
	logger   *slog.Logger

	mu          sync.Mutex
	profileByID map[string]entity.Profile
	mirroredURL map[string]string
}

// Option configures the Service
type Option func(*Service)

// WithProfiles enables counterpart profile enrichment
func WithProfiles(p ProfileProvider) Option {
	return func(s *Service) { s.profiles = p }
}

// WithAvatarMirror enables avatar mirroring into owned storage
func WithAvatarMirror(m AvatarMirror) Option {
	return func(s *Service) { s.avatars = m }
}

// WithArchive enables best-effort archiving of observed events
func WithArchive(a EventSink) Option {
	return func(s *Service) { s.archive = a }
}

// New creates an inbox service over the given backend client
func New(backend BackendClient, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		backend:     backend,
		logger:      logger,
		profileByID: make(map[string]entity.Profile),
		mirroredURL: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchInbox retrieves the subject's raw event batch and aggregates it
// into the ranked summary list. Observed events are archived best-effort;
// an archive failure never fails the refresh.
func (s *Service) FetchInbox(ctx context.Context, subjectID string) ([]entity.ConversationSummary, error) {
	events, err := s.backend.GetInbox(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("fetching inbox: %w", err)
	}

	summaries := Aggregate(events, subjectID)
	labelSummaries(summaries)
	s.enrich(ctx, summaries)

	if s.archive != nil && len(events) > 0 {
		go s.archiveEvents(subjectID, events)
	}

	return summaries, nil
}

// FetchTranscript retrieves and normalizes the full message history
// between the subject and one counterpart.
func (s *Service) FetchTranscript(ctx context.Context, subjectID, counterpartID string) ([]entity.Message, error) {
	events, err := s.backend.GetConversation(ctx, subjectID, counterpartID)
	if err != nil {
		return nil, fmt.Errorf("fetching conversation %s: %w", counterpartID, err)
	}
	return NormalizeTranscript(events, subjectID), nil
}

// enrich fills counterpart display fields from the profile provider and
// rewrites avatar URLs through the mirror. Both are best-effort: a failed
// lookup leaves whatever the raw batch carried inline.
func (s *Service) enrich(ctx context.Context, summaries []entity.ConversationSummary) {
	for i := range summaries {
		cp := &summaries[i].Counterpart

		if s.profiles != nil {
			if profile, ok := s.lookupProfile(ctx, cp.ID); ok {
				if profile.Name != "" {
					cp.DisplayName = profile.Name
				}
				if profile.AvatarURL != "" {
					cp.AvatarURL = profile.AvatarURL
				}
				cp.RoleLabel = profile.Role
				cp.ContactEmail = profile.Email
			}
		}

		if s.avatars != nil && cp.AvatarURL != "" {
			cp.AvatarURL = s.mirrorAvatar(ctx, cp.ID, cp.AvatarURL)
		}
	}
}

func (s *Service) lookupProfile(ctx context.Context, userID string) (entity.Profile, bool) {
	s.mu.Lock()
	cached, ok := s.profileByID[userID]
	s.mu.Unlock()
	if ok {
		return cached, true
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Debug("profile lookup failed", "user_id", userID, "error", err)
		return entity.Profile{}, false
	}
	if profile == nil {
		return entity.Profile{}, false
	}

	s.mu.Lock()
	s.profileByID[userID] = *profile
	s.mu.Unlock()
	return *profile, true
}

func (s *Service) mirrorAvatar(ctx context.Context, counterpartID, sourceURL string) string {
	s.mu.Lock()
	mirrored, ok := s.mirroredURL[counterpartID]
	s.mu.Unlock()
	if ok {
		return mirrored
	}

	url, err := s.avatars.Mirror(ctx, counterpartID, sourceURL)
	if err != nil {
		s.logger.Debug("avatar mirror failed", "counterpart_id", counterpartID, "error", err)
		return sourceURL
	}

	s.mu.Lock()
	s.mirroredURL[counterpartID] = url
	s.mu.Unlock()
	return url
}

func (s *Service) archiveEvents(subjectID string, events []entity.ChatEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.archive.ArchiveBatch(ctx, subjectID, events); err != nil {
		s.logger.Error("archiving chat events failed", "subject_id", subjectID, "count", len(events), "error", err)
	}
}
