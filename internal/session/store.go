// Package session holds the authenticated identity and its lifecycle.
package session

import (
	"context"
	"log"
	"sync"

	"github.com/dewinglab/coinmatch/internal/api"
	"github.com/dewinglab/coinmatch/internal/prefs"
)

// State is the session lifecycle state.
type State int

const (
	// StateLoading is the initial state while a persisted session is
	// being restored.
	StateLoading State = iota
	// StateAnonymous means no user is signed in.
	StateAnonymous
	// StateAuthenticated means a user and token are present.
	StateAuthenticated
)

// Store owns the current token and user profile. It is the only component
// that touches the persisted session blob.
type Store struct {
	mu    sync.Mutex
	api   *api.Client
	state State
	token string
	user  api.User
}

// New creates a session store in the Loading state. Call Restore to settle
// it.
func New(client *api.Client) *Store {
	return &Store{api: client, state: StateLoading}
}

// Restore reads the persisted session. No blob or a corrupt blob settles
// the store Anonymous (clearing corrupt storage); a valid blob settles it
// Authenticated with the cached profile and then refreshes the profile
// from the server, keeping the cached copy if the refresh fails.
func (s *Store) Restore(ctx context.Context) {
	stored, err := prefs.LoadSession()
	if err != nil {
		log.Printf("warn: failed to restore session: %v", err)
		_ = prefs.ClearSession()
		s.set(StateAnonymous, "", api.User{})
		return
	}
	if stored == nil {
		s.set(StateAnonymous, "", api.User{})
		return
	}
	s.set(StateAuthenticated, stored.Token, stored.User)

	profile, err := s.api.Profile(ctx, stored.Token)
	if err != nil {
		// stale cached profile is acceptable; the session stays valid
		log.Printf("warn: failed to refresh profile: %v", err)
		return
	}
	s.mu.Lock()
	current := s.token
	if current == stored.Token && s.state == StateAuthenticated {
		s.user = profile
	}
	s.mu.Unlock()
	if err := prefs.SaveSession(prefs.StoredSession{Token: stored.Token, User: profile}); err != nil {
		log.Printf("warn: failed to persist refreshed profile: %v", err)
	}
}

// Login authenticates against the server, persisting the session on
// success. Failures propagate to the caller; the store does not enter an
// error state.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.set(StateAuthenticated, resp.Token, resp.User)
	if err := prefs.SaveSession(prefs.StoredSession{Token: resp.Token, User: resp.User}); err != nil {
		log.Printf("warn: failed to persist session: %v", err)
	}
	return nil
}

// Logout notifies the server best-effort, then unconditionally clears the
// session locally.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token != "" {
		if err := s.api.Logout(ctx, token); err != nil {
			log.Printf("warn: failed to notify server about logout: %v", err)
		}
	}
	s.set(StateAnonymous, "", api.User{})
	if err := prefs.ClearSession(); err != nil {
		log.Printf("warn: failed to clear persisted session: %v", err)
	}
}

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current session token, empty when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current profile, zero when anonymous.
func (s *Store) User() api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Store) set(state State, token string, user api.User) {
	s.mu.Lock()
	s.state = state
	s.token = token
	s.user = user
	s.mu.Unlock()
}
