package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/policy"
	"github.com/bloghive/bloghive-api/internal/infrastructure/memory"
)

func seedUser(t *testing.T, store *memory.Store, username string) *entity.User {
	t.Helper()
	u := &entity.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     entity.RoleUser,
	}
	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u
}

func actorFor(u *entity.User) policy.Actor {
	return policy.Actor{ID: u.ID, Role: u.Role, Blocked: u.IsBlocked}
}

func TestToggleFollowRoundTrip(t *testing.T) {
	store := memory.NewStore()
	svc := &UserService{Users: store}
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	following, err := svc.ToggleFollow(ctx, actorFor(alice), bob.ID)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !following {
		t.Error("first toggle should follow")
	}

	p, err := svc.PublicProfile(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !p.IsFollowing || p.Followers != 1 {
		t.Errorf("profile = following:%v followers:%d, want true/1", p.IsFollowing, p.Followers)
	}

	following, err = svc.ToggleFollow(ctx, actorFor(alice), bob.ID)
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if following {
		t.Error("second toggle should unfollow")
	}

	p, err = svc.PublicProfile(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.IsFollowing || p.Followers != 0 {
		t.Errorf("profile after unfollow = following:%v followers:%d, want false/0", p.IsFollowing, p.Followers)
	}
}

func TestToggleFollowSelf(t *testing.T) {
	store := memory.NewStore()
	svc := &UserService{Users: store}
	alice := seedUser(t, store, "alice")

	if _, err := svc.ToggleFollow(context.Background(), actorFor(alice), alice.ID); !errors.Is(err, ErrSelfAction) {
		t.Errorf("err = %v, want ErrSelfAction", err)
	}
}

func TestToggleFollowBlockedActor(t *testing.T) {
	store := memory.NewStore()
	svc := &UserService{Users: store}
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	if _, err := store.ToggleBlock(ctx, alice.ID); err != nil {
		t.Fatalf("block: %v", err)
	}

	actor := actorFor(alice)
	actor.Blocked = true
	if _, err := svc.ToggleFollow(ctx, actor, bob.ID); !IsForbidden(err) {
		t.Errorf("err = %v, want forbidden", err)
	}
}

func TestToggleFollowUnknownTarget(t *testing.T) {
	store := memory.NewStore()
	svc := &UserService{Users: store}
	alice := seedUser(t, store, "alice")

	if _, err := svc.ToggleFollow(context.Background(), actorFor(alice), "no-such-id"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUpdateProfileBio(t *testing.T) {
	store := memory.NewStore()
	svc := &UserService{Users: store}
	alice := seedUser(t, store, "alice")

	bio := "go developer"
	u, err := svc.UpdateProfile(context.Background(), actorFor(alice), UpdateProfileInput{Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Bio != bio {
		t.Errorf("bio = %q, want %q", u.Bio, bio)
	}

	got, err := store.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Bio != bio {
		t.Errorf("persisted bio = %q, want %q", got.Bio, bio)
	}
}

func TestDeleteAccountCascadesBlogs(t *testing.T) {
	store := memory.NewStore()
	users := &UserService{Users: store}
	blogs := &BlogService{Blogs: store.Blogs()}
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	b, err := blogs.Create(ctx, actorFor(alice), BlogInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("create blog: %v", err)
	}

	if err := users.DeleteAccount(ctx, actorFor(alice)); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := store.GetByID(ctx, alice.ID); err == nil {
		t.Error("user should be gone")
	}
	if _, err := blogs.Get(ctx, b.ID); !errors.Is(err, ErrBlogNotFound) {
		t.Errorf("blog err = %v, want ErrBlogNotFound", err)
	}
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	store := memory.NewStore()
	svc := &UserService{Users: store} // no ES configured
	ctx := context.Background()

	seedUser(t, store, "alice")
	seedUser(t, store, "alicia")
	seedUser(t, store, "bob")

	got, err := svc.Search(ctx, "ali", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d users, want 2", len(got))
	}
	if got[0].Username != "alice" || got[1].Username != "alicia" {
		t.Errorf("got %q/%q, want alice/alicia", got[0].Username, got[1].Username)
	}
}
