package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/featherpost/client/internal/follow"
	"github.com/featherpost/client/internal/models"
	"github.com/featherpost/client/internal/session"
)

type fakePosts struct {
	refreshes  int
	refreshErr error
	posts      []models.Post
}

func (f *fakePosts) Refresh(context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakePosts) List() []models.Post {
	return append([]models.Post{}, f.posts...)
}

type fakeProfileSource struct {
	refreshes  int
	clears     int
	refreshErr error
	profile    *models.ViewerProfile
}

func (f *fakeProfileSource) Refresh(context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func (f *fakeProfileSource) Clear() {
	f.clears++
	f.profile = nil
}

func (f *fakeProfileSource) Profile() (models.ViewerProfile, bool) {
	if f.profile == nil {
		return models.ViewerProfile{}, false
	}
	return *f.profile, true
}

type fakeStates struct{ states map[int64]follow.State }

func (f fakeStates) StateFor(authorID int64) follow.State {
	if s, ok := f.states[authorID]; ok {
		return s
	}
	return follow.StateNotFollowing
}

type fakeGate struct{ loggedIn bool }

func (f fakeGate) LoggedIn() bool { return f.loggedIn }

var postedAt = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestReloadKeepsErrorSlotsIndependent(t *testing.T) {
	feedDown := errors.New("feed down")
	profileDown := errors.New("profile down")

	cases := []struct {
		name           string
		feedErr        error
		profileErr     error
		wantFeedErr    error
		wantProfileErr error
	}{
		{"feed fails alone", feedDown, nil, feedDown, nil},
		{"profile fails alone", nil, profileDown, nil, profileDown},
		{"both fail", feedDown, profileDown, feedDown, profileDown},
		{"both succeed", nil, nil, nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts := &fakePosts{refreshErr: tc.feedErr, posts: []models.Post{{ID: 1, PostedAt: postedAt}}}
			profile := &fakeProfileSource{refreshErr: tc.profileErr, profile: &models.ViewerProfile{ID: 1}}
			orch := New(posts, profile, fakeStates{}, fakeGate{loggedIn: true})

			orch.Reload(context.Background())

			feedErr, profileErr := orch.Errors()
			if !errors.Is(feedErr, tc.wantFeedErr) && !(feedErr == nil && tc.wantFeedErr == nil) {
				t.Fatalf("feed slot: expected %v got %v", tc.wantFeedErr, feedErr)
			}
			if !errors.Is(profileErr, tc.wantProfileErr) && !(profileErr == nil && tc.wantProfileErr == nil) {
				t.Fatalf("profile slot: expected %v got %v", tc.wantProfileErr, profileErr)
			}
			// A profile failure must not block the feed's successful render.
			if tc.feedErr == nil && len(orch.Snapshot()) != 1 {
				t.Fatal("expected the loaded feed to render")
			}
		})
	}
}

func TestReloadAnonymousClearsProfile(t *testing.T) {
	posts := &fakePosts{}
	profile := &fakeProfileSource{profile: &models.ViewerProfile{ID: 1}}
	orch := New(posts, profile, fakeStates{}, fakeGate{loggedIn: false})

	orch.Reload(context.Background())

	if profile.refreshes != 0 {
		t.Fatal("anonymous reload must not fetch the profile")
	}
	if profile.clears != 1 {
		t.Fatal("anonymous reload must clear any stale profile")
	}
}

func TestSessionChangeTriggersFullReload(t *testing.T) {
	posts := &fakePosts{}
	profile := &fakeProfileSource{profile: &models.ViewerProfile{ID: 1}}
	orch := New(posts, profile, fakeStates{}, fakeGate{loggedIn: true})

	orch.HandleSessionChange(context.Background(), session.Change{Reason: session.ReasonLogin, LoggedIn: true})

	if posts.refreshes != 1 || profile.refreshes != 1 {
		t.Fatalf("expected both fetches, got posts=%d profile=%d", posts.refreshes, profile.refreshes)
	}
}

func TestPostCreatedReloadsPostsOnly(t *testing.T) {
	posts := &fakePosts{}
	profile := &fakeProfileSource{profile: &models.ViewerProfile{ID: 1}}
	orch := New(posts, profile, fakeStates{}, fakeGate{loggedIn: true})

	orch.PostCreated(context.Background())

	if posts.refreshes != 1 {
		t.Fatalf("expected a posts refresh, got %d", posts.refreshes)
	}
	if profile.refreshes != 0 {
		t.Fatal("a create must not re-fetch the profile")
	}
}

func TestEditAndDeleteEventsMakeNoNetworkCalls(t *testing.T) {
	posts := &fakePosts{}
	profile := &fakeProfileSource{}
	orch := New(posts, profile, fakeStates{}, fakeGate{loggedIn: true})

	orch.PostUpdated(models.Post{ID: 1})
	orch.PostRemoved(1)

	if posts.refreshes != 0 || profile.refreshes != 0 {
		t.Fatal("edit and delete are reconciled in place, never via refetch")
	}
}

func TestSnapshotDerivesPermissionsAndFollowState(t *testing.T) {
	posts := &fakePosts{posts: []models.Post{
		{ID: 1, AuthorID: 1, PostedAt: postedAt}, // viewer's own post
		{ID: 2, AuthorID: 5, PostedAt: postedAt}, // followed author
		{ID: 3, AuthorID: 6, PostedAt: postedAt}, // stranger
	}}
	profile := &fakeProfileSource{profile: &models.ViewerProfile{ID: 1, Role: models.RoleAdmin, FollowingIDs: []int64{5}}}
	states := fakeStates{states: map[int64]follow.State{
		1: follow.StateSelf,
		5: follow.StateFollowing,
	}}
	orch := New(posts, profile, states, fakeGate{loggedIn: true})

	entries := orch.Snapshot()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if entries[0].Follow != follow.StateSelf || !entries[0].CanEdit || !entries[0].CanDelete {
		t.Fatalf("own post entry wrong: %+v", entries[0])
	}
	if entries[1].Follow != follow.StateFollowing || entries[1].CanEdit {
		t.Fatalf("followed author entry wrong: %+v", entries[1])
	}
	// Admins may delete anyone's post but edit only their own.
	if !entries[1].CanDelete || !entries[2].CanDelete || entries[2].CanEdit {
		t.Fatalf("admin permissions wrong: %+v %+v", entries[1], entries[2])
	}
	if entries[2].Follow != follow.StateNotFollowing {
		t.Fatalf("stranger entry wrong: %+v", entries[2])
	}
}

func TestSnapshotAnonymousHasNoPermissions(t *testing.T) {
	posts := &fakePosts{posts: []models.Post{{ID: 1, AuthorID: 5, PostedAt: postedAt}}}
	orch := New(posts, &fakeProfileSource{}, fakeStates{}, fakeGate{})

	entries := orch.Snapshot()
	if entries[0].CanEdit || entries[0].CanDelete {
		t.Fatal("anonymous viewers get no mutation affordances")
	}
}
