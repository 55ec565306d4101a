package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clubsync/clubsync/supabase"
)

type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

type SessionRemote interface {
	RestoreSession(ctx context.Context) (*supabase.Session, error)
	SignUp(ctx context.Context, email string, password string, name string) (*supabase.Session, error)
	SignIn(ctx context.Context, email string, password string) (*supabase.Session, error)
	SignOut(ctx context.Context) error
	OnSessionChange(fn func(*supabase.Session)) func()
	Profile(ctx context.Context, userID string) (supabase.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update supabase.ProfileUpdate) (supabase.Profile, error)
}

// Session owns the current identity. All other stores read it through UserID
// and never hold identity state of their own.
func NewSession(remote SessionRemote) *Session {
	return &Session{
		remote: remote,
	}
}

type Session struct {
	remote SessionRemote

	mu          sync.Mutex
	state       State
	user        *supabase.Profile
	session     *supabase.Session
	unsubscribe func()
}

// Initialize resolves the current remote session and subscribes to external
// session changes. It is idempotent: later calls return immediately without
// registering a second subscription. On failure the state still settles on
// anonymous so callers are never stuck waiting.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.state = StateInitializing
	s.mu.Unlock()

	unsubscribe := s.remote.OnSessionChange(func(session *supabase.Session) {
		if err := s.apply(context.Background(), session); err != nil {
			slog.Error("Failed to apply session change", slog.Any("err", err))
		}
	})
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	session, err := s.remote.RestoreSession(ctx)
	if err != nil {
		s.clear()
		return remoteErr("restore session", err)
	}
	if err = s.apply(ctx, session); err != nil {
		return err
	}
	return nil
}

// apply moves the store to the state implied by session: nil means anonymous,
// otherwise the profile is loaded and the identity replaced.
func (s *Session) apply(ctx context.Context, session *supabase.Session) error {
	if session == nil {
		s.clear()
		return nil
	}

	profile, err := s.remote.Profile(ctx, session.UserID)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.user != nil && s.user.ID == session.UserID {
			// Keep the known identity across a failed refresh of the profile.
			s.session = session
			return nil
		}
		s.state = StateAnonymous
		s.session = nil
		s.user = nil
		return remoteErr("load profile", err)
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.session = session
	s.user = &profile
	s.mu.Unlock()
	return nil
}

func (s *Session) clear() {
	s.mu.Lock()
	s.state = StateAnonymous
	s.session = nil
	s.user = nil
	s.mu.Unlock()
}

func (s *Session) SignUp(ctx context.Context, email string, password string, name string) error {
	session, err := s.remote.SignUp(ctx, email, password, name)
	if err != nil {
		return remoteErr("sign up", err)
	}
	return s.apply(ctx, session)
}

func (s *Session) SignIn(ctx context.Context, email string, password string) error {
	session, err := s.remote.SignIn(ctx, email, password)
	if err != nil {
		return remoteErr("sign in", err)
	}
	return s.apply(ctx, session)
}

// SignOut clears the local identity unconditionally: after a user-initiated
// sign-out the store must not keep claiming authentication, even when the
// remote call failed partway.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.remote.SignOut(ctx)
	s.clear()
	if err != nil {
		return remoteErr("sign out", err)
	}
	return nil
}

// UpdateProfile sends the partial update and replaces the cached identity
// with the server-confirmed result, never with the submitted partial, so
// server-side normalization is always captured.
func (s *Session) UpdateProfile(ctx context.Context, update supabase.ProfileUpdate) (supabase.Profile, error) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return supabase.Profile{}, ErrNotAuthenticated
	}

	profile, err := s.remote.UpdateProfile(ctx, user.ID, update)
	if err != nil {
		return supabase.Profile{}, remoteErr("update profile", err)
	}

	s.mu.Lock()
	s.user = &profile
	s.mu.Unlock()
	return profile, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) User() (supabase.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return supabase.Profile{}, false
	}
	return *s.user, true
}

func (s *Session) UserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return "", false
	}
	return s.user.ID, true
}

// Close drops the session-change subscription.
func (s *Session) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
