// Package follow derives "is the viewer following this author" for every
// rendered post from the one shared viewer profile, and propagates confirmed
// follow mutations back into that profile so all posts by the same author
// update consistently without a re-fetch.
package follow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/featherpost/client/internal/models"
	"github.com/featherpost/client/internal/session"
)

var (
	// ErrSelfFollow indicates an attempt to follow or unfollow the viewer's
	// own account; no affordance is ever rendered for it.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrPending indicates a follow or unfollow call for the same target is
	// already in flight.
	ErrPending = errors.New("follow change already in flight")
)

// State is the rendered follow affordance for one post author.
type State int

const (
	// StateSelf means the author is the viewer; no affordance is rendered.
	StateSelf State = iota
	// StateNotFollowing means the viewer does not follow the author.
	StateNotFollowing
	// StateFollowing means the viewer follows the author.
	StateFollowing
	// StatePending means a follow or unfollow call is in flight.
	StatePending
)

func (s State) String() string {
	switch s {
	case StateSelf:
		return "self"
	case StateNotFollowing:
		return "not-following"
	case StateFollowing:
		return "following"
	case StatePending:
		return "pending"
	default:
		return "unknown"
	}
}

// Gateway performs authenticated JSON calls against the backend.
type Gateway interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// ProfileHolder is the single owner of the viewer's follow set. All mutations
// flow through it, one id at a time.
type ProfileHolder interface {
	Profile() (models.ViewerProfile, bool)
	AddFollowing(userID int64)
	RemoveFollowing(userID int64)
}

// Gate reports whether the viewer holds an authenticated session.
type Gate interface {
	LoggedIn() bool
}

// Reconciler issues follow and unfollow calls and reconciles their outcomes
// into the shared viewer profile. The transient pending state is local UI
// state; everything else is derived from the profile on every read.
type Reconciler struct {
	gw      Gateway
	profile ProfileHolder
	gate    Gate

	mu      sync.Mutex
	pending map[int64]bool
}

// New constructs a Reconciler.
func New(gw Gateway, profile ProfileHolder, gate Gate) *Reconciler {
	if gw == nil || profile == nil || gate == nil {
		panic("follow: all dependencies must be non-nil")
	}
	return &Reconciler{gw: gw, profile: profile, gate: gate, pending: make(map[int64]bool)}
}

// StateFor derives the follow state for posts by the given author. It is a
// pure derivation over the current profile, recomputed on every call, except
// for the transient pending latch.
func (r *Reconciler) StateFor(authorID int64) State {
	r.mu.Lock()
	inFlight := r.pending[authorID]
	r.mu.Unlock()
	if inFlight {
		return StatePending
	}

	profile, ok := r.profile.Profile()
	if !ok {
		return StateNotFollowing
	}
	if profile.ID == authorID {
		return StateSelf
	}
	if profile.IsFollowing(authorID) {
		return StateFollowing
	}
	return StateNotFollowing
}

// Follow issues POST /users/{id}/follow. On success the target id is added to
// the shared follow set; on failure no profile mutation occurs. Anonymous
// viewers get ErrLoginRequired before any network call.
func (r *Reconciler) Follow(ctx context.Context, authorID int64) error {
	return r.toggle(ctx, authorID, "follow")
}

// Unfollow issues POST /users/{id}/unfollow, removing the target id from the
// shared follow set on success only.
func (r *Reconciler) Unfollow(ctx context.Context, authorID int64) error {
	return r.toggle(ctx, authorID, "unfollow")
}

func (r *Reconciler) toggle(ctx context.Context, authorID int64, verb string) error {
	if !r.gate.LoggedIn() {
		return session.ErrLoginRequired
	}
	if profile, ok := r.profile.Profile(); ok && profile.ID == authorID {
		return ErrSelfFollow
	}

	if !r.acquire(authorID) {
		return ErrPending
	}
	defer r.release(authorID)

	path := fmt.Sprintf("/users/%d/%s", authorID, verb)
	if err := r.gw.Do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return err
	}

	// The profile patch is the single mechanism by which every other rendered
	// post by this author learns of the change.
	if verb == "follow" {
		r.profile.AddFollowing(authorID)
	} else {
		r.profile.RemoveFollowing(authorID)
	}
	return nil
}

// acquire takes the per-target latch that keeps a second toggle for the same
// author from being issued while one is in flight. Toggles on different
// authors interleave freely.
func (r *Reconciler) acquire(authorID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending[authorID] {
		return false
	}
	r.pending[authorID] = true
	return true
}

func (r *Reconciler) release(authorID int64) {
	r.mu.Lock()
	delete(r.pending, authorID)
	r.mu.Unlock()
}
