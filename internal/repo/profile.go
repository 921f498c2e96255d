package repo

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/featherpost/client/internal/models"
)

// ProfileRepository owns the single ViewerProfile object every rendered post
// derives its follow state from. The follow set is mutated only through
// AddFollowing and RemoveFollowing, one id at a time, and every mutation bumps
// a version counter so dependents can detect identity changes cheaply instead
// of deep-diffing.
type ProfileRepository struct {
	gw Gateway

	mu      sync.RWMutex
	profile *models.ViewerProfile
	version uint64
}

// NewProfileRepository constructs a repository over the given gateway.
func NewProfileRepository(gw Gateway) *ProfileRepository {
	if gw == nil {
		panic("repo: gateway must not be nil")
	}
	return &ProfileRepository{gw: gw}
}

// Refresh fetches the viewer's profile. Requires an authenticated session;
// an anonymous call surfaces the gateway's AuthError.
func (r *ProfileRepository) Refresh(ctx context.Context) error {
	var fetched models.ViewerProfile
	if err := r.gw.Do(ctx, http.MethodGet, "/users/me", nil, &fetched); err != nil {
		return fmt.Errorf("fetch viewer profile: %w", err)
	}

	r.mu.Lock()
	r.profile = &fetched
	r.version++
	r.mu.Unlock()
	return nil
}

// Clear drops the profile, e.g. on logout.
func (r *ProfileRepository) Clear() {
	r.mu.Lock()
	if r.profile != nil {
		r.profile = nil
		r.version++
	}
	r.mu.Unlock()
}

// Profile returns a copy of the current profile, or false when absent.
func (r *ProfileRepository) Profile() (models.ViewerProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.profile == nil {
		return models.ViewerProfile{}, false
	}
	return *r.profile, true
}

// Version returns the profile's identity counter. It changes exactly when the
// profile object or its follow set changes.
func (r *ProfileRepository) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// ViewerID returns the viewer's user id when a profile is present.
func (r *ProfileRepository) ViewerID() (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.profile == nil {
		return 0, false
	}
	return r.profile.ID, true
}

// IsFollowing evaluates the follow predicate against the current profile.
func (r *ProfileRepository) IsFollowing(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profile != nil && r.profile.IsFollowing(userID)
}

// AddFollowing records a confirmed follow of userID. Idempotent.
func (r *ProfileRepository) AddFollowing(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profile == nil || r.profile.IsFollowing(userID) {
		return
	}
	ids := make([]int64, 0, len(r.profile.FollowingIDs)+1)
	ids = append(ids, r.profile.FollowingIDs...)
	ids = append(ids, userID)
	r.profile.FollowingIDs = ids
	r.profile.FollowingCount = len(ids)
	r.version++
}

// RemoveFollowing records a confirmed unfollow of userID. Idempotent.
func (r *ProfileRepository) RemoveFollowing(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profile == nil || !r.profile.IsFollowing(userID) {
		return
	}
	ids := make([]int64, 0, len(r.profile.FollowingIDs))
	for _, id := range r.profile.FollowingIDs {
		if id != userID {
			ids = append(ids, id)
		}
	}
	r.profile.FollowingIDs = ids
	r.profile.FollowingCount = len(ids)
	r.version++
}
