// Package session keeps the signed-in user's credentials between runs.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrNoSession is returned by a Backend that has nothing saved.
	ErrNoSession = errors.New("no saved session")
	// ErrNotHydrated is returned by Store.Get before Hydrate has finished.
	ErrNotHydrated = errors.New("session store not hydrated yet")
)

// Profile is the signed-in user as the backend described them at login.
type Profile struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Role    string `json:"role" yaml:"role"`
	GymName string `json:"gymName,omitempty" yaml:"gym_name,omitempty"`
}

// Session is what survives between runs: the bearer token and who it belongs to.
type Session struct {
	Token     string    `json:"token" yaml:"token"`
	User      Profile   `json:"user" yaml:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
	SavedAt   time.Time `json:"savedAt" yaml:"saved_at"`
}

// Expired reports whether the token's expiry, if known, has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Backend persists a single session.
type Backend interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context) error
}

// Store is an in-memory session with write-through persistence. It must be
// hydrated once from its Backend before use; Ready is closed when that has
// happened, whether or not a session was found.
type Store struct {
	backend Backend
	now     func() time.Time

	mu      sync.RWMutex
	current *Session

	once  sync.Once
	ready chan struct{}
	err   error
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend, now: time.Now, ready: make(chan struct{})}
}

// Hydrate loads the saved session. Only the first call does any work; later
// calls return the first call's result. A missing session is not an error.
func (s *Store) Hydrate(ctx context.Context) error {
	s.once.Do(func() {
		defer close(s.ready)
		loaded, err := s.backend.Load(ctx)
		if err != nil && !errors.Is(err, ErrNoSession) {
			s.err = err
			return
		}
		s.mu.Lock()
		s.current = loaded
		s.mu.Unlock()
	})
	<-s.ready
	return s.err
}

// Ready is closed once hydration has completed.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) hydrated() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Get returns the current session, or ErrNoSession when signed out.
func (s *Store) Get() (Session, error) {
	if !s.hydrated() {
		return Session{}, ErrNotHydrated
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, ErrNoSession
	}
	return *s.current, nil
}

// Token is a shortcut for the current bearer token; "" when signed out.
func (s *Store) Token() string {
	sess, err := s.Get()
	if err != nil {
		return ""
	}
	return sess.Token
}

// Set replaces the session and persists it.
func (s *Store) Set(ctx context.Context, sess Session) error {
	if !s.hydrated() {
		return ErrNotHydrated
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = s.now().UTC()
	}
	if err := s.backend.Save(ctx, &sess); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	return nil
}

// Clear signs out locally and removes the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	if !s.hydrated() {
		return ErrNotHydrated
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return s.backend.Delete(ctx)
}
