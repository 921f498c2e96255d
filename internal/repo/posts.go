package repo

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/featherpost/client/internal/models"
)

type postDraft struct {
	Content string `json:"content"`
}

// PostRepository fetches, caches, and locally mutates the public feed. The
// cached collection is always held in canonical feed order: newest first,
// ties broken by the server's response order (stable sort). Every refresh and
// every local patch reproduces that ordering rule.
type PostRepository struct {
	gw Gateway

	mu    sync.RWMutex
	posts []models.Post
}

// NewPostRepository constructs a repository over the given gateway.
func NewPostRepository(gw Gateway) *PostRepository {
	if gw == nil {
		panic("repo: gateway must not be nil")
	}
	return &PostRepository{gw: gw}
}

// Refresh fetches the feed and replaces the local collection.
func (r *PostRepository) Refresh(ctx context.Context) error {
	var fetched []models.Post
	if err := r.gw.Do(ctx, http.MethodGet, "/tweets", nil, &fetched); err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}

	sortFeed(fetched)

	r.mu.Lock()
	r.posts = fetched
	r.mu.Unlock()
	return nil
}

// List returns the cached feed in canonical order.
func (r *PostRepository) List() []models.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Post, len(r.posts))
	copy(out, r.posts)
	return out
}

// Get returns the cached post with the given id.
func (r *PostRepository) Get(id int64) (models.Post, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Create issues the write and, on success, inserts the server-confirmed post
// at the position its timestamp dictates rather than blindly prepending.
func (r *PostRepository) Create(ctx context.Context, content string) (models.Post, error) {
	var created models.Post
	if err := r.gw.Do(ctx, http.MethodPost, "/tweets", postDraft{Content: content}, &created); err != nil {
		return models.Post{}, err
	}

	r.mu.Lock()
	r.posts = append(r.posts, created)
	sortFeed(r.posts)
	r.mu.Unlock()
	return created, nil
}

// Update issues the edit and replaces the matching post in place. It fails
// with ErrNotFound when the id is not in the local collection.
func (r *PostRepository) Update(ctx context.Context, id int64, content string) (models.Post, error) {
	if _, ok := r.Get(id); !ok {
		return models.Post{}, fmt.Errorf("update post %d: %w", id, ErrNotFound)
	}

	var updated models.Post
	path := fmt.Sprintf("/tweets/%d", id)
	if err := r.gw.Do(ctx, http.MethodPut, path, postDraft{Content: content}, &updated); err != nil {
		return models.Post{}, err
	}

	r.mu.Lock()
	for i, p := range r.posts {
		if p.ID == id {
			r.posts[i] = updated
			break
		}
	}
	sortFeed(r.posts)
	r.mu.Unlock()
	return updated, nil
}

// Remove issues the delete call and drops the post from the local collection
// only after server confirmation. A failed delete leaves the collection
// untouched so the feed still shows the original post.
func (r *PostRepository) Remove(ctx context.Context, id int64) error {
	if _, ok := r.Get(id); !ok {
		return fmt.Errorf("remove post %d: %w", id, ErrNotFound)
	}

	path := fmt.Sprintf("/tweets/%d", id)
	if err := r.gw.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	r.mu.Lock()
	for i, p := range r.posts {
		if p.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	return nil
}

// sortFeed orders posts newest first, preserving the existing relative order
// of equal timestamps.
func sortFeed(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PostedAt.After(posts[j].PostedAt)
	})
}
