package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/editor"
	"github.com/coderunr/editor/internal/keys"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is returned for unknown session ids
	ErrNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the session cap is reached
	ErrTooManySessions = errors.New("too many sessions")
)

// Session is one editor mounted on behalf of a remote view. Each session has
// its own key dispatcher, standing in for the browser page.
type Session struct {
	ID        string
	CreatedAt time.Time

	*editor.Surface

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch marks the session as used
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns when the session was last used
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager keeps the mounted sessions
type Manager struct {
	cat         *catalogue.Catalogue
	exec        editor.Executor
	defaultLang catalogue.LanguageID
	maxSessions int
	idleTimeout time.Duration
	now         func() time.Time

	sessions *xsync.MapOf[string, *Session]
	// createMu serialises the cap check with insertion
	createMu sync.Mutex
	logger   *logrus.Entry
}

// Options configures a Manager
type Options struct {
	Catalogue       *catalogue.Catalogue
	Executor        editor.Executor
	DefaultLanguage catalogue.LanguageID
	MaxSessions     int
	IdleTimeout     time.Duration
	Logger          *logrus.Logger
	Now             func() time.Time
}

// NewManager creates an empty session manager
func NewManager(opts Options) *Manager {
	if opts.Catalogue == nil {
		opts.Catalogue = catalogue.Builtin()
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = catalogue.Default
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		cat:         opts.Catalogue,
		exec:        opts.Executor,
		defaultLang: opts.DefaultLanguage,
		maxSessions: opts.MaxSessions,
		idleTimeout: opts.IdleTimeout,
		now:         opts.Now,
		sessions:    xsync.NewMapOf[string, *Session](),
		logger:      opts.Logger.WithField("component", "session"),
	}
}

// Catalogue returns the catalogue sessions are mounted with
func (m *Manager) Catalogue() *catalogue.Catalogue {
	return m.cat
}

// Create mounts a new session. An empty language selects the default.
func (m *Manager) Create(lang catalogue.LanguageID) (*Session, error) {
	if lang == "" {
		lang = m.defaultLang
	}
	if !m.cat.Has(lang) {
		return nil, fmt.Errorf("%w: %q", catalogue.ErrUnknownLanguage, lang)
	}

	m.createMu.Lock()
	defer m.createMu.Unlock()

	if m.maxSessions > 0 && m.sessions.Size() >= m.maxSessions {
		return nil, ErrTooManySessions
	}

	id := uuid.New().String()
	now := m.now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		lastSeen:  now,
		Surface: editor.Mount(editor.Options{
			Catalogue:  m.cat,
			Executor:   m.exec,
			Dispatcher: keys.NewDispatcher(),
			Language:   lang,
			Logger:     m.logger.WithField("session_id", id),
		}),
	}
	m.sessions.Store(id, s)

	m.logger.WithFields(logrus.Fields{
		"session_id": id,
		"language":   lang,
	}).Info("Session created")
	return s, nil
}

// Get returns the session with id and marks it as used
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch(m.now())
	return s, nil
}

// Delete unmounts and forgets the session with id
func (m *Manager) Delete(id string) error {
	s, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return ErrNotFound
	}
	s.Unmount()
	m.logger.WithField("session_id", id).Info("Session deleted")
	return nil
}

// List returns all sessions ordered by creation time
func (m *Manager) List() []*Session {
	var out []*Session
	m.sessions.Range(func(_ string, s *Session) bool {
		out = append(out, s)
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of mounted sessions
func (m *Manager) Len() int {
	return m.sessions.Size()
}

// Reap unmounts sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Reap(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}

	var expired []string
	m.sessions.Range(func(id string, s *Session) bool {
		if now.Sub(s.LastSeen()) > m.idleTimeout {
			expired = append(expired, id)
		}
		return true
	})

	removed := 0
	for _, id := range expired {
		if err := m.Delete(id); err == nil {
			removed++
		}
	}
	if removed > 0 {
		m.logger.WithField("count", removed).Info("Reaped idle sessions")
	}
	return removed
}

// RunReaper reaps idle sessions every interval until ctx is done
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Reap(m.now())
		}
	}
}

// Close unmounts every session
func (m *Manager) Close() {
	m.sessions.Range(func(id string, _ *Session) bool {
		_ = m.Delete(id)
		return true
	})
}
