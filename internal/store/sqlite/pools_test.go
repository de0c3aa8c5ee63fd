package sqlite

import (
	"context"
	"testing"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
)

func TestCreateAndGetPool(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreatePool(ctx, "My Sequence", testUploader)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}

	pool, err := s.GetPool(ctx, id)
	if err != nil {
		t.Fatalf("GetPool: %v", err)
	}
	if pool.Name != "My Sequence" {
		t.Errorf("Name: got %q", pool.Name)
	}
	if pool.OwnerID != testUploader.ID {
		t.Errorf("OwnerID: got %q", pool.OwnerID)
	}
	if pool.IsPublic {
		t.Error("new pools should be private")
	}
	if pool.PostCount != 0 {
		t.Errorf("PostCount: got %d, want 0", pool.PostCount)
	}
}

func TestCreatePoolEmptyName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreatePool(context.Background(), "   ", testUploader)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected Validation, got %v", err)
	}
}

func TestRenamePool(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreatePool(ctx, "before", testUploader)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}

	if err := s.RenamePool(ctx, id, "after"); err != nil {
		t.Fatalf("RenamePool: %v", err)
	}

	pool, err := s.GetPool(ctx, id)
	if err != nil {
		t.Fatalf("GetPool: %v", err)
	}
	if pool.Name != "after" {
		t.Errorf("Name: got %q", pool.Name)
	}

	if err := s.RenamePool(ctx, 9999, "ghost"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSetPoolVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreatePool(ctx, "toggling", testUploader)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}

	if err := s.SetPoolVisibility(ctx, id, true); err != nil {
		t.Fatalf("SetPoolVisibility: %v", err)
	}
	pool, err := s.GetPool(ctx, id)
	if err != nil {
		t.Fatalf("GetPool: %v", err)
	}
	if !pool.IsPublic {
		t.Error("pool should be public")
	}
}

func TestDeletePoolKeepsPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	postID := mustCreatePost(t, s, fp(90))
	poolID, err := s.CreatePool(ctx, "doomed", testUploader)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if _, err := s.AppendToPool(ctx, poolID, postID); err != nil {
		t.Fatalf("AppendToPool: %v", err)
	}

	if err := s.DeletePool(ctx, poolID); err != nil {
		t.Fatalf("DeletePool: %v", err)
	}

	if _, err := s.GetPool(ctx, poolID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("deleted pool still readable: %v", err)
	}
	// The member post survives.
	if _, err := s.GetPost(ctx, postID); err != nil {
		t.Errorf("post should survive pool deletion: %v", err)
	}
}

func TestListPoolsVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	private, err := s.CreatePool(ctx, "mine", testUploader)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	public, err := s.CreatePool(ctx, "everyone", testUploader)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if err := s.SetPoolVisibility(ctx, public, true); err != nil {
		t.Fatalf("SetPoolVisibility: %v", err)
	}

	anon, err := s.ListPools(ctx, 1, 25, domain.AnonymousActor)
	if err != nil {
		t.Fatalf("ListPools anon: %v", err)
	}
	if len(anon.Items) != 1 || anon.Items[0].ID != public {
		t.Errorf("anon pools: %v", anon.Items)
	}

	owner, err := s.ListPools(ctx, 1, 25, testUploader)
	if err != nil {
		t.Fatalf("ListPools owner: %v", err)
	}
	if len(owner.Items) != 2 {
		t.Errorf("owner pools: got %d, want 2", len(owner.Items))
	}
	// Newest first.
	if owner.Items[0].ID != public || owner.Items[1].ID != private {
		t.Errorf("pool order: %v", owner.Items)
	}
}

func TestGetPoolPostsOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreatePost(t, s, fp(91), "one")
	b := mustCreatePost(t, s, fp(92), "two")

	poolID, err := s.CreatePool(ctx, "ordered", testUploader)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	for _, id := range []int64{b, a} {
		if _, err := s.AppendToPool(ctx, poolID, id); err != nil {
			t.Fatalf("AppendToPool: %v", err)
		}
	}

	posts, err := s.GetPoolPosts(ctx, poolID)
	if err != nil {
		t.Fatalf("GetPoolPosts: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != b || posts[1].ID != a {
		t.Errorf("pool posts: %v", posts)
	}
	// Summaries carry tags.
	if len(posts[0].Tags) != 1 || posts[0].Tags[0] != "two" {
		t.Errorf("pool post tags: %v", posts[0].Tags)
	}
}

func TestPoolsForPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	postID := mustCreatePost(t, s, fp(93))

	inPool, err := s.CreatePool(ctx, "holder", testUploader)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if _, err := s.CreatePool(ctx, "empty", testUploader); err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if _, err := s.AppendToPool(ctx, inPool, postID); err != nil {
		t.Fatalf("AppendToPool: %v", err)
	}

	pools, err := s.PoolsForPost(ctx, postID, testUploader)
	if err != nil {
		t.Fatalf("PoolsForPost: %v", err)
	}
	if len(pools) != 1 || pools[0].ID != inPool {
		t.Errorf("pools for post: %v", pools)
	}

	// Anonymous can't see the private pool.
	pools, err = s.PoolsForPost(ctx, postID, domain.AnonymousActor)
	if err != nil {
		t.Fatalf("PoolsForPost anon: %v", err)
	}
	if len(pools) != 0 {
		t.Errorf("anon should see no pools, got %v", pools)
	}
}
