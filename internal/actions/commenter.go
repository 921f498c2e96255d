package actions

import (
	"context"

	"github.com/featherpost/client/internal/models"
	"github.com/featherpost/client/internal/repo"
	"github.com/featherpost/client/internal/session"
)

// Commenter opens per-post comment views. Reading comments is public;
// posting one requires an authenticated session.
type Commenter struct {
	gw   repo.Gateway
	gate Gate
}

// NewCommenter constructs a Commenter.
func NewCommenter(gw repo.Gateway, gate Gate) *Commenter {
	if gw == nil || gate == nil {
		panic("actions: all commenter dependencies must be non-nil")
	}
	return &Commenter{gw: gw, gate: gate}
}

// Open creates a comment view for the given post and loads its comments.
// The view owns a fresh comment repository that is discarded on Close.
func (c *Commenter) Open(ctx context.Context, postID int64) (*CommentView, error) {
	view := &CommentView{
		comments: repo.NewCommentRepository(c.gw, postID),
		gate:     c.gate,
	}
	if err := view.comments.Refresh(ctx); err != nil {
		return nil, err
	}
	return view, nil
}

// CommentView is one open comment modal: the scoped repository plus the
// per-view submission latch.
type CommentView struct {
	comments *repo.CommentRepository
	gate     Gate
	latch    latch
}

// Comments returns the loaded comments, newest first.
func (v *CommentView) Comments() []models.Comment {
	return v.comments.List()
}

// Post submits a new comment and refreshes the view so the server-confirmed
// copy is shown. Anonymous viewers get ErrLoginRequired before any network
// call, and a view that has already been closed gets repo.ErrViewClosed.
// A response arriving after Close is discarded without error.
func (v *CommentView) Post(ctx context.Context, content string) (models.Comment, error) {
	if v.comments.Closed() {
		return models.Comment{}, repo.ErrViewClosed
	}
	if !v.gate.LoggedIn() {
		return models.Comment{}, session.ErrLoginRequired
	}
	if err := validateContent(content); err != nil {
		return models.Comment{}, err
	}
	if !v.latch.acquire() {
		return models.Comment{}, ErrBusy
	}
	defer v.latch.release()

	created, err := v.comments.Create(ctx, content)
	if err != nil {
		return models.Comment{}, err
	}

	if !v.comments.Closed() {
		if err := v.comments.Refresh(ctx); err != nil {
			return created, err
		}
	}
	return created, nil
}

// Close discards the view's comment collection. In-flight requests complete
// but their results are not applied.
func (v *CommentView) Close() {
	v.comments.Close()
}
