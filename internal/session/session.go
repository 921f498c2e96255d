package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/featherpost/client/internal/logging"
)

var (
	// ErrNoToken indicates the token store holds no persisted credential.
	ErrNoToken = errors.New("no stored token")
	// ErrLoginRequired indicates an action needs an authenticated session and
	// the caller should be sent to the login entry point before any network call.
	ErrLoginRequired = errors.New("login required")
)

// TokenStore persists the bearer token so a session survives process restarts.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// TokenIssuer exchanges credentials for a bearer token with the backend.
// Issuance is an anonymous call, so the issuer carries no session state.
type TokenIssuer interface {
	IssueToken(ctx context.Context, screenName, password string) (string, error)
}

// Reason classifies an observable session state transition.
type Reason int

const (
	// ReasonRestored means a persisted token was adopted at startup.
	ReasonRestored Reason = iota + 1
	// ReasonLogin means the backend accepted credentials and issued a token.
	ReasonLogin
	// ReasonLogout means the user ended the session locally.
	ReasonLogout
	// ReasonInvalidated means a call reported the credential is no longer
	// valid; the user should be redirected to the login entry point.
	ReasonInvalidated
)

func (r Reason) String() string {
	switch r {
	case ReasonRestored:
		return "restored"
	case ReasonLogin:
		return "login"
	case ReasonLogout:
		return "logout"
	case ReasonInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Change describes one session transition delivered to subscribers.
type Change struct {
	Reason   Reason
	LoggedIn bool
}

// Store owns the authentication credential and its lifecycle. The logged-in
// flag is derived: it is true exactly when a token is present.
type Store struct {
	tokens TokenStore
	issuer TokenIssuer

	mu    sync.Mutex
	token string
	subs  []func(Change)
}

// New constructs a Store backed by the provided token store and issuer.
func New(tokens TokenStore, issuer TokenIssuer) *Store {
	if tokens == nil {
		panic("session: token store must not be nil")
	}
	return &Store{tokens: tokens, issuer: issuer}
}

// Subscribe registers a callback invoked synchronously on every session
// transition. Subscribers must not call back into the Store.
func (s *Store) Subscribe(fn func(Change)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// LoggedIn reports whether a credential is present.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Token returns the current credential, if any.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// Restore runs once at startup. It adopts any persisted token without
// validating it against the server; validity is discovered lazily on the
// first authorized call.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.tokens.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load persisted token: %w", err)
	}
	if token == "" {
		return nil
	}

	s.adopt(ctx, token, ReasonRestored)
	return nil
}

// Login exchanges credentials for a token, persists it, and flips the
// logged-in flag. Backend rejections surface as the issuer's AuthError.
func (s *Store) Login(ctx context.Context, screenName, password string) error {
	if s.issuer == nil {
		return errors.New("session: no token issuer configured")
	}

	token, err := s.issuer.IssueToken(ctx, screenName, password)
	if err != nil {
		return err
	}

	s.adopt(ctx, token, ReasonLogin)

	// The session is established even if persistence fails; the token then
	// simply does not survive a restart.
	if err := s.tokens.Save(ctx, token); err != nil {
		logging.FromContext(ctx).Warn("failed to persist session token", "error", err)
	}
	return nil
}

// Logout clears the credential and flag. It always succeeds locally and never
// calls the network.
func (s *Store) Logout(ctx context.Context) {
	s.drop(ctx, ReasonLogout)
}

// Invalidate is called when a request reports the credential is no longer
// valid. It behaves like Logout plus an invalidation notification so the app
// can redirect the user to the login entry point. Concurrent invalidations
// collapse to a single transition.
func (s *Store) Invalidate(ctx context.Context) {
	s.drop(ctx, ReasonInvalidated)
}

func (s *Store) adopt(ctx context.Context, token string, reason Reason) {
	s.mu.Lock()
	s.token = token
	subs := append([]func(Change){}, s.subs...)
	s.mu.Unlock()

	logging.FromContext(ctx).Info("session established", "reason", reason.String())
	notify(subs, Change{Reason: reason, LoggedIn: true})
}

func (s *Store) drop(ctx context.Context, reason Reason) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	subs := append([]func(Change){}, s.subs...)
	s.mu.Unlock()

	if err := s.tokens.Clear(ctx); err != nil {
		logging.FromContext(ctx).Warn("failed to clear persisted token", "error", err)
	}

	logging.FromContext(ctx).Info("session ended", "reason", reason.String())
	notify(subs, Change{Reason: reason, LoggedIn: false})
}

func notify(subs []func(Change), change Change) {
	for _, fn := range subs {
		fn(change)
	}
}
