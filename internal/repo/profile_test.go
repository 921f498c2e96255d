package repo

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/featherpost/client/internal/models"
)

func profileGateway(profile models.ViewerProfile) *gatewayStub {
	return &gatewayStub{handler: func(method, path string, _, out any) error {
		if method == http.MethodGet && path == "/users/me" {
			*out.(*models.ViewerProfile) = profile
		}
		return nil
	}}
}

func TestProfileRepositoryRefresh(t *testing.T) {
	gw := profileGateway(models.ViewerProfile{ID: 1, Tag: "alice", FollowingIDs: []int64{5}, FollowingCount: 1})
	profiles := NewProfileRepository(gw)

	if _, ok := profiles.Profile(); ok {
		t.Fatal("profile must be absent before refresh")
	}

	if err := profiles.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	profile, ok := profiles.Profile()
	if !ok || profile.Tag != "alice" {
		t.Fatalf("expected loaded profile, got %+v (present=%v)", profile, ok)
	}
	if !profiles.IsFollowing(5) || profiles.IsFollowing(6) {
		t.Fatal("follow predicate must reflect the fetched follow set")
	}
}

func TestProfileRepositoryFollowSetMutations(t *testing.T) {
	gw := profileGateway(models.ViewerProfile{ID: 1, FollowingIDs: []int64{5}, FollowingCount: 1})
	profiles := NewProfileRepository(gw)
	if err := profiles.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	v0 := profiles.Version()

	profiles.AddFollowing(9)
	if v := profiles.Version(); v == v0 {
		t.Fatal("adding a follow must bump the version")
	}
	profile, _ := profiles.Profile()
	if !reflect.DeepEqual(profile.FollowingIDs, []int64{5, 9}) || profile.FollowingCount != 2 {
		t.Fatalf("unexpected follow set %+v", profile)
	}

	// Idempotent: re-adding does not change identity.
	v1 := profiles.Version()
	profiles.AddFollowing(9)
	if profiles.Version() != v1 {
		t.Fatal("re-adding an existing follow must not bump the version")
	}

	profiles.RemoveFollowing(5)
	profile, _ = profiles.Profile()
	if !reflect.DeepEqual(profile.FollowingIDs, []int64{9}) || profile.FollowingCount != 1 {
		t.Fatalf("unexpected follow set after removal %+v", profile)
	}

	v2 := profiles.Version()
	profiles.RemoveFollowing(5)
	if profiles.Version() != v2 {
		t.Fatal("removing an absent follow must not bump the version")
	}
}

func TestProfileRepositoryClear(t *testing.T) {
	gw := profileGateway(models.ViewerProfile{ID: 1})
	profiles := NewProfileRepository(gw)
	if err := profiles.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	v0 := profiles.Version()
	profiles.Clear()

	if _, ok := profiles.Profile(); ok {
		t.Fatal("expected absent profile after clear")
	}
	if profiles.Version() == v0 {
		t.Fatal("clear must bump the version")
	}

	// Mutations with no profile are silent no-ops.
	profiles.AddFollowing(3)
	if profiles.IsFollowing(3) {
		t.Fatal("no profile means no follow set to mutate")
	}
}
