// Package actions holds the thin mutation surfaces wrapped by the CLI: each
// checks the login gate before any network call, latches its own trigger for
// the duration of its in-flight request, validates input locally, and
// signals explicit upward events to the feed orchestrator.
package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/featherpost/client/internal/gateway"
	"github.com/featherpost/client/internal/models"
	"github.com/featherpost/client/internal/session"
)

// ErrNotAllowed indicates the viewer is not eligible for the mutation. The
// check is advisory; the backend remains the authority.
var ErrNotAllowed = errors.New("not allowed")

// PostWriter is the post repository surface the composer mutates through.
type PostWriter interface {
	Get(id int64) (models.Post, bool)
	Create(ctx context.Context, content string) (models.Post, error)
	Update(ctx context.Context, id int64, content string) (models.Post, error)
	Remove(ctx context.Context, id int64) error
}

// Gate reports whether the viewer holds an authenticated session.
type Gate interface {
	LoggedIn() bool
}

// Viewer exposes the loaded viewer profile for advisory permission checks.
type Viewer interface {
	Profile() (models.ViewerProfile, bool)
}

// FeedEvents are the explicit upward events the composer emits so the single
// state owner recomputes dependent views; sibling surfaces never call each
// other directly.
type FeedEvents interface {
	PostCreated(ctx context.Context)
	PostUpdated(post models.Post)
	PostRemoved(id int64)
}

// Composer is the create/edit/delete workflow for posts.
type Composer struct {
	posts  PostWriter
	gate   Gate
	viewer Viewer
	events FeedEvents

	createLatch latch
	editLatch   latch
	removeLatch *keyedLatch
}

// NewComposer constructs a Composer.
func NewComposer(posts PostWriter, gate Gate, viewer Viewer, events FeedEvents) *Composer {
	if posts == nil || gate == nil || viewer == nil || events == nil {
		panic("actions: all composer dependencies must be non-nil")
	}
	return &Composer{posts: posts, gate: gate, viewer: viewer, events: events, removeLatch: newKeyedLatch()}
}

// Create publishes a new post. Anonymous viewers get ErrLoginRequired before
// any network call.
func (c *Composer) Create(ctx context.Context, content string) (models.Post, error) {
	if !c.gate.LoggedIn() {
		return models.Post{}, session.ErrLoginRequired
	}
	if err := validateContent(content); err != nil {
		return models.Post{}, err
	}
	if !c.createLatch.acquire() {
		return models.Post{}, ErrBusy
	}
	defer c.createLatch.release()

	created, err := c.posts.Create(ctx, strings.TrimSpace(content))
	if err != nil {
		return models.Post{}, err
	}

	c.events.PostCreated(ctx)
	return created, nil
}

// Edit replaces the content of an existing post the viewer authored.
func (c *Composer) Edit(ctx context.Context, id int64, content string) (models.Post, error) {
	if !c.gate.LoggedIn() {
		return models.Post{}, session.ErrLoginRequired
	}
	if err := validateContent(content); err != nil {
		return models.Post{}, err
	}
	if post, ok := c.posts.Get(id); ok {
		if profile, loaded := c.viewer.Profile(); loaded && !profile.CanEdit(post) {
			return models.Post{}, fmt.Errorf("edit post %d: %w", id, ErrNotAllowed)
		}
	}
	if !c.editLatch.acquire() {
		return models.Post{}, ErrBusy
	}
	defer c.editLatch.release()

	updated, err := c.posts.Update(ctx, id, strings.TrimSpace(content))
	if err != nil {
		return models.Post{}, err
	}

	c.events.PostUpdated(updated)
	return updated, nil
}

// Delete removes a post the viewer authored, or any post when the viewer
// holds the admin role. Removal is not optimistic: the repository keeps the
// post until the server confirms.
func (c *Composer) Delete(ctx context.Context, id int64) error {
	if !c.gate.LoggedIn() {
		return session.ErrLoginRequired
	}
	if post, ok := c.posts.Get(id); ok {
		if profile, loaded := c.viewer.Profile(); loaded && !profile.CanDelete(post) {
			return fmt.Errorf("delete post %d: %w", id, ErrNotAllowed)
		}
	}
	if !c.removeLatch.acquire(id) {
		return ErrBusy
	}
	defer c.removeLatch.release(id)

	if err := c.posts.Remove(ctx, id); err != nil {
		return err
	}

	c.events.PostRemoved(id)
	return nil
}

// validateContent applies the client-side prechecks mirrored from the
// backend's constraints.
func validateContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return &gateway.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{"content": "content must not be blank"},
		}
	}
	if utf8.RuneCountInString(trimmed) > models.MaxPostLength {
		return &gateway.ValidationError{
			Message: "Validation failed",
			Fields: map[string]string{
				"content": fmt.Sprintf("content must be at most %d characters", models.MaxPostLength),
			},
		}
	}
	return nil
}
