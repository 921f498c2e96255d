// Package feed composes the entity repositories and the follow reconciler
// into the single screen the user sees, and owns the refresh policy.
package feed

import (
	"context"
	"sync"

	"github.com/featherpost/client/internal/follow"
	"github.com/featherpost/client/internal/logging"
	"github.com/featherpost/client/internal/models"
	"github.com/featherpost/client/internal/session"
)

// PostSource is the post repository surface the orchestrator needs.
type PostSource interface {
	Refresh(ctx context.Context) error
	List() []models.Post
}

// ProfileSource is the viewer profile repository surface.
type ProfileSource interface {
	Refresh(ctx context.Context) error
	Clear()
	Profile() (models.ViewerProfile, bool)
}

// FollowStates derives the rendered follow state per post author.
type FollowStates interface {
	StateFor(authorID int64) follow.State
}

// Gate reports whether the viewer holds an authenticated session.
type Gate interface {
	LoggedIn() bool
}

// Entry is one rendered feed row: the post plus everything derived from the
// shared viewer profile at snapshot time.
type Entry struct {
	Post      models.Post
	Follow    follow.State
	CanEdit   bool
	CanDelete bool
}

// Orchestrator sequences the two independent fetches, keeps their error slots
// separate so a failure in one never blocks the other's render, and applies
// the refresh policy: full reload on login transitions, posts-only reload
// after a create, in-place reads after edits and deletes, nothing for
// follow changes.
type Orchestrator struct {
	posts   PostSource
	profile ProfileSource
	states  FollowStates
	gate    Gate

	mu         sync.Mutex
	feedErr    error
	profileErr error
}

// New constructs an Orchestrator.
func New(posts PostSource, profile ProfileSource, states FollowStates, gate Gate) *Orchestrator {
	if posts == nil || profile == nil || states == nil || gate == nil {
		panic("feed: all dependencies must be non-nil")
	}
	return &Orchestrator{posts: posts, profile: profile, states: states, gate: gate}
}

// Reload performs the full refresh: the public feed and, when logged in, the
// viewer profile. Each fetch records into its own error slot; a profile
// failure still leaves a freshly loaded public feed and vice versa.
func (o *Orchestrator) Reload(ctx context.Context) {
	feedErr := o.posts.Refresh(ctx)

	var profileErr error
	if o.gate.LoggedIn() {
		profileErr = o.profile.Refresh(ctx)
	} else {
		o.profile.Clear()
	}

	o.mu.Lock()
	o.feedErr = feedErr
	o.profileErr = profileErr
	o.mu.Unlock()

	if feedErr != nil {
		logging.FromContext(ctx).Warn("feed load failed", "error", feedErr)
	}
	if profileErr != nil {
		logging.FromContext(ctx).Warn("profile load failed", "error", profileErr)
	}
}

// RefreshPosts reloads only the post list, picking up the server's
// authoritative copy after a create.
func (o *Orchestrator) RefreshPosts(ctx context.Context) {
	err := o.posts.Refresh(ctx)
	o.mu.Lock()
	o.feedErr = err
	o.mu.Unlock()
}

// HandleSessionChange applies the refresh policy for a login-state
// transition: a full reload of both fetches.
func (o *Orchestrator) HandleSessionChange(ctx context.Context, change session.Change) {
	logging.FromContext(ctx).Info("session changed, reloading feed",
		"reason", change.Reason.String(), "logged_in", change.LoggedIn)
	o.Reload(ctx)
}

// PostCreated is the upward event from the composer: posts-only reload.
func (o *Orchestrator) PostCreated(ctx context.Context) {
	o.RefreshPosts(ctx)
}

// PostUpdated is the upward event after a confirmed edit. The repository's
// collection is already patched in place, so no network call is made.
func (o *Orchestrator) PostUpdated(models.Post) {}

// PostRemoved is the upward event after a confirmed delete. As with edits,
// the local collection is already current.
func (o *Orchestrator) PostRemoved(int64) {}

// Errors returns the two independent error slots from the last reload.
func (o *Orchestrator) Errors() (feedErr, profileErr error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.feedErr, o.profileErr
}

// Snapshot renders the current feed: the ordered posts, each with its follow
// state and advisory permissions derived from the shared viewer profile.
func (o *Orchestrator) Snapshot() []Entry {
	posts := o.posts.List()
	profile, loggedIn := o.profile.Profile()

	entries := make([]Entry, 0, len(posts))
	for _, p := range posts {
		entry := Entry{Post: p, Follow: o.states.StateFor(p.AuthorID)}
		if loggedIn {
			entry.CanEdit = profile.CanEdit(p)
			entry.CanDelete = profile.CanDelete(p)
		}
		entries = append(entries, entry)
	}
	return entries
}

// Viewer exposes the loaded viewer profile for rendering.
func (o *Orchestrator) Viewer() (models.ViewerProfile, bool) {
	return o.profile.Profile()
}
