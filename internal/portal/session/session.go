// Package session holds the portal's credential and decides whether a view
// may render. Role and expiry checks here are a navigation aid; the server
// enforces both again on every request.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bharatid/internal/portal/token"
	"bharatid/pkg/domain"
)

// Clock returns the current time.
type Clock func() time.Time

// Session owns the credential for one portal run. The store is read once by
// Open; afterwards the in-memory copy is authoritative and every change is
// written through.
type Session struct {
	mu     sync.RWMutex
	store  CredentialStore
	token  string
	clock  Clock
	logger *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock expiry is checked against.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger for credential lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open loads the stored credential.
func Open(store CredentialStore, opts ...Option) (*Session, error) {
	s := &Session{
		store:  store,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	tok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	s.token = tok
	return s, nil
}

// Token returns the raw credential, "" when absent.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the credential.
func (s *Session) Set(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(tok); err != nil {
		return err
	}
	s.token = tok
	return nil
}

// Clear drops the credential from memory and from the store. The in-memory
// copy is dropped even when the store fails.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return s.store.Clear()
}

// State is the derived view of the session.
type State struct {
	Authenticated bool
	Role          domain.Role
	Subject       string
}

// State decodes the current credential. It never mutates the session.
func (s *Session) State() State {
	claims, ok := s.claims()
	if !ok {
		return State{}
	}
	return State{Authenticated: true, Role: claims.Role, Subject: claims.Subject}
}

func (s *Session) claims() (*token.Claims, bool) {
	raw := s.Token()
	if raw == "" {
		return nil, false
	}
	claims, err := token.Decode(raw)
	if err != nil || claims.Expired(s.clock()) {
		return nil, false
	}
	return claims, true
}

// HasCapability reports whether an authenticated state grants c.
func HasCapability(state State, c domain.Capability) bool {
	return state.Authenticated && state.Role.Can(c)
}
