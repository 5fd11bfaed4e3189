package financas

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/minhasfinancas/financas-go/internal/auth"
	"github.com/minhasfinancas/financas-go/internal/types"
	"github.com/pkg/errors"
)

// SessionState is where the session store is in its lifecycle
type SessionState int

const (
	// StateUnauthenticated is the initial state and the state after logout
	StateUnauthenticated SessionState = iota

	// StateAuthenticating means a login or register call is in flight
	StateAuthenticating

	// StateAuthenticated means a token and user are cached and persisted
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// SessionStore owns the token and user. It persists both on login, restores
// them on startup and clears them on logout or when the server rejects the
// token.
type SessionStore struct {
	client  *Client
	service *auth.Service

	mu    sync.Mutex
	state SessionState
	token string
	user  *User
}

func newSessionStore(client *Client) *SessionStore {
	return &SessionStore{
		client:  client,
		service: auth.NewService(client.transport, client.options.Logger),
	}
}

// State returns the current lifecycle state
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the signed-in user, or nil
func (s *SessionStore) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login exchanges credentials for a session. On failure the store returns to
// unauthenticated and the error's Message is what the server said, or a
// generic fallback.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*User, error) {
	return s.authenticate(func() (*types.AuthResponse, error) {
		return s.service.Login(ctx, email, password)
	})
}

// Register creates an account and signs in with it
func (s *SessionStore) Register(ctx context.Context, name, email, password string) (*User, error) {
	return s.authenticate(func() (*types.AuthResponse, error) {
		return s.service.Register(ctx, name, email, password)
	})
}

func (s *SessionStore) authenticate(call func() (*types.AuthResponse, error)) (*User, error) {
	s.mu.Lock()
	if s.state == StateAuthenticating {
		s.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	prev := s.state
	s.state = StateAuthenticating
	s.mu.Unlock()

	resp, err := call()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if prev == StateAuthenticated {
			s.state = prev
		} else {
			s.state = StateUnauthenticated
		}
		return nil, err
	}

	if err := s.persistLocked(resp.Token, resp.User); err != nil {
		s.state = StateUnauthenticated
		return nil, err
	}

	s.token = resp.Token
	s.user = resp.User
	s.state = StateAuthenticated
	s.client.transport.SetAuth(resp.Token)

	u := *resp.User
	return &u, nil
}

func (s *SessionStore) persistLocked(token string, user *User) error {
	if user == nil {
		user = &User{}
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "failed to encode user")
	}
	if err := s.client.storage.Set(types.KeyToken, token); err != nil {
		return errors.Wrap(err, "failed to persist token")
	}
	if err := s.client.storage.Set(types.KeyUser, string(raw)); err != nil {
		return errors.Wrap(err, "failed to persist user")
	}
	return nil
}

// Restore reads the persisted token and user. It reports true when a usable
// session was found. A token whose exp claim has passed, or a user record
// that cannot be decoded, is discarded.
func (s *SessionStore) Restore() (bool, error) {
	st := s.client.storage

	token, ok, err := st.Get(types.KeyToken)
	if err != nil {
		return false, errors.Wrap(err, "failed to read token")
	}
	if !ok || token == "" {
		return false, nil
	}

	rawUser, ok, err := st.Get(types.KeyUser)
	if err != nil {
		return false, errors.Wrap(err, "failed to read user")
	}

	var user User
	if !ok || json.Unmarshal([]byte(rawUser), &user) != nil {
		s.warn("Discarding persisted session with unreadable user")
		return false, st.Delete(types.KeyToken, types.KeyUser)
	}

	if exp, ok := auth.TokenExpiry(token); ok && !exp.After(s.client.now()) {
		s.warn("Discarding expired session", "expired_at", exp)
		return false, st.Delete(types.KeyToken, types.KeyUser)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.client.transport.SetAuth(token)
	return true, nil
}

// Logout clears the session from memory and storage
func (s *SessionStore) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

// expire runs when a non-auth request sent with token comes back 401.
// Concurrent calls clear storage once; the rest find the store already
// unauthenticated. A rejection of a token that has since been replaced is
// ignored.
func (s *SessionStore) expire(token string) {
	s.mu.Lock()
	if s.state != StateAuthenticated || s.token != token {
		s.mu.Unlock()
		return
	}
	if err := s.clearLocked(); err != nil {
		s.warn("Failed to clear expired session", "error", err)
	}
	s.mu.Unlock()

	s.warn("Session expired")
	if cb := s.client.options.OnSessionExpired; cb != nil {
		cb()
	}
}

func (s *SessionStore) clearLocked() error {
	s.token = ""
	s.user = nil
	s.state = StateUnauthenticated
	s.client.transport.SetAuth("")

	if err := s.client.storage.Delete(types.KeyToken, types.KeyUser); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}
	return nil
}

func (s *SessionStore) warn(msg string, keysAndValues ...interface{}) {
	if s.client.options.Logger != nil {
		s.client.options.Logger.Warn(msg, keysAndValues...)
	}
}
