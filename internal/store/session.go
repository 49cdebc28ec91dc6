package store

import (
	"context"
	"log/slog"
	"sync"

	"taskboard/internal/service"
)

// LoadState tracks whether the session has been confirmed with the server.
type LoadState int

const (
	NotChecked LoadState = iota
	Checking
	Resolved
)

func (s LoadState) String() string {
	switch s {
	case Checking:
		return "checking"
	case Resolved:
		return "resolved"
	default:
		return "not-checked"
	}
}

// SessionStore holds the client's belief about the current authenticated identity.
type SessionStore struct {
	api    service.API
	notify Notifier
	nav    Navigator
	logger *slog.Logger

	mu            sync.RWMutex
	state         LoadState
	authenticated bool
	user          *service.User
	// generation counts completed logins and logouts. A session check that
	// started before the latest one does not overwrite its result.
	generation uint64
}

// NewSessionStore creates a session store in the NotChecked state.
func NewSessionStore(api service.API, notify Notifier, nav Navigator, logger *slog.Logger) *SessionStore {
	return &SessionStore{api: api, notify: notify, nav: nav, logger: logger}
}

// State returns the load state.
func (s *SessionStore) State() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether the session is not yet resolved.
// Authenticated must not be trusted for routing while this is true.
func (s *SessionStore) Loading() bool {
	return s.State() != Resolved
}

// Authenticated reports the authentication flag.
func (s *SessionStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns the current user, or false if there is none.
func (s *SessionStore) User() (service.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return service.User{}, false
	}
	return *s.user, true
}

// CheckSession asks the server whether the stored credentials are still valid.
// Any failure resolves to unauthenticated. The state always ends Resolved.
// If a login or logout completes while the check is in flight, its result
// stands and the check's answer is dropped.
func (s *SessionStore) CheckSession(ctx context.Context) error {
	s.mu.Lock()
	s.state = Checking
	started := s.generation
	s.mu.Unlock()

	user, err := s.api.CheckAuth(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Resolved
	if s.generation != started {
		s.logger.Debug("session check superseded", "error", err)
		return nil
	}
	if err != nil {
		s.logger.Debug("session check failed", "error", err)
		s.authenticated = false
		s.user = nil
		return err
	}
	s.authenticated = true
	s.user = &user
	return nil
}

// Login posts credentials. On success the session becomes authenticated and
// the dashboard route is signalled. Failures are not retried.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	user, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logger.Debug("login failed", "error", err)
		s.mu.Lock()
		s.authenticated = false
		s.state = Resolved
		s.mu.Unlock()
		s.notify.Notify(Notification{Level: LevelError, Message: "login failed", Err: err})
		return err
	}

	s.mu.Lock()
	s.authenticated = true
	s.user = &user
	s.state = Resolved
	s.generation++
	s.mu.Unlock()

	navigatorFrom(ctx, s.nav).Navigate(RouteDashboard)
	s.notify.Notify(Notification{Level: LevelSuccess, Message: "logged in as " + user.DisplayName()})
	return nil
}

// Logout ends the server session. On failure local state is left untouched:
// the client keeps believing it is logged in until the next session check.
func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Debug("logout failed", "error", err)
		s.notify.Notify(Notification{Level: LevelError, Message: "logout failed", Err: err})
		return err
	}

	s.mu.Lock()
	s.authenticated = false
	s.user = nil
	s.state = Resolved
	s.generation++
	s.mu.Unlock()

	navigatorFrom(ctx, s.nav).Navigate(RouteHome)
	s.notify.Notify(Notification{Level: LevelSuccess, Message: "logged out"})
	return nil
}

// Register creates an account and signals the login route.
// It never authenticates the session.
func (s *SessionStore) Register(ctx context.Context, name, email, password string) error {
	if err := s.api.Register(ctx, name, email, password); err != nil {
		s.logger.Debug("registration failed", "error", err)
		s.notify.Notify(Notification{Level: LevelError, Message: "registration failed", Err: err})
		return err
	}

	navigatorFrom(ctx, s.nav).Navigate(RouteLogin)
	s.notify.Notify(Notification{Level: LevelSuccess, Message: "registration successful, please log in"})
	return nil
}
