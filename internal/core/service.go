package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/porelog/internal/history"
	"github.com/JonMunkholm/porelog/internal/porelog"
)

var (
	// ErrSessionNotFound is returned for unknown or evicted session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSuperseded is returned by Load when a newer load or a reset was
	// started for the same session before this load finished.
	ErrSuperseded = errors.New("load superseded by a newer load")

	// ErrFileTooLarge is returned when a file exceeds Options.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile wraps the parse error of a file with no content.
	ErrEmptyFile = errors.New("empty file")
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	MaxConcurrentLoads int
	MaxWait            time.Duration
	LoadTimeout        time.Duration
	MaxFileSize        int64
	Missing            porelog.MissingPolicy
	CSVMode            porelog.CSVMode

	// Now is the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Session is a snapshot of one viewer's state.
type Session struct {
	ID         string       `json:"id"`
	FileName   string       `json:"file_name,omitempty"`
	View       porelog.View `json:"view"`
	LoadedAt   time.Time    `json:"loaded_at,omitzero"`
	LastAccess time.Time    `json:"-"`
	Generation uint64       `json:"generation"`
	LastError  string       `json:"last_error,omitempty"`
}

// Service owns viewer sessions. The porelog functions stay stateless; all
// mutable state lives here behind one mutex.
type Service struct {
	history history.Store
	limiter *LoadLimiter
	opts    Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service recording load events to store.
// A nil store keeps history in memory.
func NewService(store history.Store, opts Options) *Service {
	if store == nil {
		store = history.NewMemoryStore(history.DefaultMemorySize)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		history:  store,
		limiter:  NewLoadLimiter(opts.MaxConcurrentLoads, opts.MaxWait),
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// NewSession creates an empty session with a fresh ID.
func (s *Service) NewSession() Session {
	now := s.opts.Now()
	sess := &Session{
		ID:         uuid.New().String(),
		View:       porelog.EmptyView(),
		LastAccess: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return *sess
}

// EnsureSession returns the session for id, creating a new one when id is
// unknown. The second result reports whether a session was created.
func (s *Service) EnsureSession(id string) (Session, bool) {
	if id != "" {
		if sess, err := s.Session(id); err == nil {
			return sess, false
		}
	}
	return s.NewSession(), true
}

// Session returns a snapshot of the session and marks it as used.
func (s *Service) Session(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.LastAccess = s.opts.Now()
	return *sess, nil
}

// DeleteSession removes the session. Unknown IDs are ignored.
func (s *Service) DeleteSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// View returns the session's view, sorted by column when column is not empty.
func (s *Service) View(id, column string, desc bool) (porelog.View, error) {
	sess, err := s.Session(id)
	if err != nil {
		return porelog.View{}, err
	}
	if column == "" {
		return sess.View, nil
	}
	return sess.View.SortedBy(column, desc), nil
}

// ExportCSV serializes the session's table in the configured CSV mode.
// The filename is derived from the loaded file's name.
func (s *Service) ExportCSV(id string) (filename, content string, err error) {
	sess, err := s.Session(id)
	if err != nil {
		return "", "", err
	}
	return porelog.CSVFilename(sess.FileName), porelog.FormatCSV(sess.View, s.opts.CSVMode), nil
}

// Reset clears the session back to the empty view. A load still running
// for the session is superseded.
func (s *Service) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.Generation++
	sess.View = porelog.EmptyView()
	sess.FileName = ""
	sess.LoadedAt = time.Time{}
	sess.LastError = ""
	sess.LastAccess = s.opts.Now()
	return nil
}

// RecentLoads returns up to limit load history entries, newest first.
func (s *Service) RecentLoads(ctx context.Context, limit int) ([]history.Entry, error) {
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent loads: %w", err)
	}
	return entries, nil
}

// LoadStatus returns the load limiter state for health checks.
func (s *Service) LoadStatus() LoadLimiterStatus {
	return s.limiter.Status()
}

// WaitForLoads blocks until in-flight loads finish or ctx ends.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
