package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type stubIssuer struct {
	mu    sync.Mutex
	token string
	err   error
	calls int
}

func (s *stubIssuer) IssueToken(context.Context, string, string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

type changeRecorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *changeRecorder) record(c Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *changeRecorder) all() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Change, len(r.changes))
	copy(out, r.changes)
	return out
}

func TestStoreLoginEstablishesSession(t *testing.T) {
	tokens := NewMemoryTokenStore()
	store := New(tokens, &stubIssuer{token: "tok-1"})

	rec := &changeRecorder{}
	store.Subscribe(rec.record)

	if err := store.Login(context.Background(), "alice", "hunter2!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if !store.LoggedIn() {
		t.Fatal("expected logged-in state after login")
	}
	if token, ok := store.Token(); !ok || token != "tok-1" {
		t.Fatalf("expected token %q got %q (present=%v)", "tok-1", token, ok)
	}

	persisted, err := tokens.Load(context.Background())
	if err != nil || persisted != "tok-1" {
		t.Fatalf("expected persisted token, got %q err=%v", persisted, err)
	}

	changes := rec.all()
	if len(changes) != 1 || changes[0].Reason != ReasonLogin || !changes[0].LoggedIn {
		t.Fatalf("unexpected changes: %+v", changes)
	}
}

func TestStoreLoginFailure(t *testing.T) {
	rejected := errors.New("invalid credentials")
	store := New(NewMemoryTokenStore(), &stubIssuer{err: rejected})

	err := store.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, rejected) {
		t.Fatalf("expected issuer error, got %v", err)
	}
	if store.LoggedIn() {
		t.Fatal("failed login must not establish a session")
	}
}

func TestStoreRestoreAdoptsPersistedToken(t *testing.T) {
	tokens := NewMemoryTokenStore()
	if err := tokens.Save(context.Background(), "tok-persisted"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	issuer := &stubIssuer{token: "unused"}
	store := New(tokens, issuer)

	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if token, ok := store.Token(); !ok || token != "tok-persisted" {
		t.Fatalf("expected adopted token, got %q (present=%v)", token, ok)
	}
	if issuer.calls != 0 {
		t.Fatalf("restore must not validate against the server, issued %d calls", issuer.calls)
	}
}

func TestStoreRestoreWithoutToken(t *testing.T) {
	store := New(NewMemoryTokenStore(), &stubIssuer{})

	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("restore with empty store: %v", err)
	}
	if store.LoggedIn() {
		t.Fatal("expected anonymous state")
	}
}

func TestStoreLogoutClearsSessionAndPersistence(t *testing.T) {
	tokens := NewMemoryTokenStore()
	store := New(tokens, &stubIssuer{token: "tok-1"})
	if err := store.Login(context.Background(), "alice", "hunter2!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	rec := &changeRecorder{}
	store.Subscribe(rec.record)

	store.Logout(context.Background())

	if store.LoggedIn() {
		t.Fatal("expected logged-out state")
	}
	if _, err := tokens.Load(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected cleared persistence, got %v", err)
	}

	changes := rec.all()
	if len(changes) != 1 || changes[0].Reason != ReasonLogout || changes[0].LoggedIn {
		t.Fatalf("unexpected changes: %+v", changes)
	}
}

func TestStoreInvalidateCollapsesConcurrentCalls(t *testing.T) {
	store := New(NewMemoryTokenStore(), &stubIssuer{token: "tok-1"})
	if err := store.Login(context.Background(), "alice", "hunter2!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	rec := &changeRecorder{}
	store.Subscribe(rec.record)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Invalidate(context.Background())
		}()
	}
	wg.Wait()

	if store.LoggedIn() {
		t.Fatal("expected invalidated session")
	}

	changes := rec.all()
	if len(changes) != 1 {
		t.Fatalf("expected exactly one transition, got %d: %+v", len(changes), changes)
	}
	if changes[0].Reason != ReasonInvalidated {
		t.Fatalf("expected invalidation reason, got %v", changes[0].Reason)
	}
}

func TestStoreClaimsPeek(t *testing.T) {
	expires := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": expires.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	store := New(NewMemoryTokenStore(), &stubIssuer{token: signed})
	if err := store.Login(context.Background(), "alice", "hunter2!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	got, ok := store.ExpiresAt()
	if !ok || !got.Equal(expires) {
		t.Fatalf("expected expiry %v got %v (present=%v)", expires, got, ok)
	}

	if sub, ok := store.ViewerHint(); !ok || sub != "42" {
		t.Fatalf("expected subject 42 got %q (present=%v)", sub, ok)
	}
}

func TestStoreClaimsPeekNonJWT(t *testing.T) {
	store := New(NewMemoryTokenStore(), &stubIssuer{token: "opaque-token"})
	if err := store.Login(context.Background(), "alice", "hunter2!"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, ok := store.ExpiresAt(); ok {
		t.Fatal("opaque tokens carry no expiry claim")
	}
}
