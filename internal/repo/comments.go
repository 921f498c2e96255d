package repo

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/featherpost/client/internal/models"
)

type commentDraft struct {
	Content string `json:"content"`
}

// CommentRepository caches the comments of a single post while its view is
// open. Closing the view discards the collection; responses that arrive after
// the close still complete but their results are not applied.
type CommentRepository struct {
	gw     Gateway
	postID int64

	mu       sync.RWMutex
	comments []models.Comment
	closed   bool
}

// NewCommentRepository constructs a repository scoped to one post's comments.
func NewCommentRepository(gw Gateway, postID int64) *CommentRepository {
	if gw == nil {
		panic("repo: gateway must not be nil")
	}
	return &CommentRepository{gw: gw, postID: postID}
}

// PostID returns the id of the post this repository is scoped to.
func (r *CommentRepository) PostID() int64 {
	return r.postID
}

// Refresh fetches the post's comments and replaces the local collection,
// newest first with server order preserved for ties. A refresh completing
// after Close is discarded without error.
func (r *CommentRepository) Refresh(ctx context.Context) error {
	var fetched []models.Comment
	path := fmt.Sprintf("/tweets/%d/comments", r.postID)
	if err := r.gw.Do(ctx, http.MethodGet, path, nil, &fetched); err != nil {
		return fmt.Errorf("fetch comments: %w", err)
	}

	sort.SliceStable(fetched, func(i, j int) bool {
		return fetched[i].PostedAt.After(fetched[j].PostedAt)
	})

	r.mu.Lock()
	if !r.closed {
		r.comments = fetched
	}
	r.mu.Unlock()
	return nil
}

// List returns the cached comments in canonical order.
func (r *CommentRepository) List() []models.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Comment, len(r.comments))
	copy(out, r.comments)
	return out
}

// Create posts a new comment and inserts the confirmed entity at the position
// its timestamp dictates. The confirmed comment is returned even when the
// view closed mid-flight, but the collection is left discarded.
func (r *CommentRepository) Create(ctx context.Context, content string) (models.Comment, error) {
	var created models.Comment
	path := fmt.Sprintf("/tweets/%d/comments", r.postID)
	if err := r.gw.Do(ctx, http.MethodPost, path, commentDraft{Content: content}, &created); err != nil {
		return models.Comment{}, err
	}

	r.mu.Lock()
	if !r.closed {
		r.comments = append(r.comments, created)
		sort.SliceStable(r.comments, func(i, j int) bool {
			return r.comments[i].PostedAt.After(r.comments[j].PostedAt)
		})
	}
	r.mu.Unlock()
	return created, nil
}

// Close discards the collection. Further applies are no-ops.
func (r *CommentRepository) Close() {
	r.mu.Lock()
	r.closed = true
	r.comments = nil
	r.mu.Unlock()
}

// Closed reports whether the owning view has been closed.
func (r *CommentRepository) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}
