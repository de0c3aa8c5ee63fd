package sqlite

import (
	"context"
	"testing"

	"github.com/pictorapp/pictor-server/internal/errors"
)

func tagNames(t *testing.T, s *Store, postID int64) []string {
	t.Helper()
	tags, err := s.GetTagsForPost(context.Background(), postID)
	if err != nil {
		t.Fatalf("GetTagsForPost: %v", err)
	}
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.NormalizedName
	}
	return names
}

func TestSetTagsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustCreatePost(t, s, fp(30))

	if err := s.SetTags(ctx, id, []string{"Blue Sky", "blue_sky", "Landscape", "night"}); err != nil {
		t.Fatalf("SetTags: %v", err)
	}

	got := tagNames(t, s, id)
	want := []string{"blue_sky", "landscape", "night"}
	if len(got) != len(want) {
		t.Fatalf("tags: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	// Replacement removes stale links and adds new ones.
	if err := s.SetTags(ctx, id, []string{"night", "stars"}); err != nil {
		t.Fatalf("SetTags replace: %v", err)
	}
	got = tagNames(t, s, id)
	if len(got) != 2 || got[0] != "night" || got[1] != "stars" {
		t.Errorf("after replace: got %v", got)
	}
}

func TestSetTagsEmptyClears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustCreatePost(t, s, fp(31), "initial")

	if err := s.SetTags(ctx, id, nil); err != nil {
		t.Fatalf("SetTags: %v", err)
	}
	if got := tagNames(t, s, id); len(got) != 0 {
		t.Errorf("tags should be empty, got %v", got)
	}
}

func TestSetTagsMissingPost(t *testing.T) {
	s := newTestStore(t)

	err := s.SetTags(context.Background(), 9999, []string{"x"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestTagsSharedBetweenPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreatePost(t, s, fp(32), "shared")
	b := mustCreatePost(t, s, fp(33), "shared")

	tagsA, err := s.GetTagsForPost(ctx, a)
	if err != nil {
		t.Fatalf("GetTagsForPost: %v", err)
	}
	tagsB, err := s.GetTagsForPost(ctx, b)
	if err != nil {
		t.Fatalf("GetTagsForPost: %v", err)
	}
	if tagsA[0].ID != tagsB[0].ID {
		t.Errorf("same tag name produced distinct rows: %d vs %d", tagsA[0].ID, tagsB[0].ID)
	}
}

func TestRenameTagSimple(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustCreatePost(t, s, fp(34), "oldname")

	renamed, err := s.RenameTag(ctx, "oldname", "newname")
	if err != nil {
		t.Fatalf("RenameTag: %v", err)
	}
	if renamed.NormalizedName != "newname" {
		t.Errorf("renamed: got %q", renamed.NormalizedName)
	}

	got := tagNames(t, s, id)
	if len(got) != 1 || got[0] != "newname" {
		t.Errorf("post tags after rename: %v", got)
	}
}

func TestRenameTagMerge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// a carries both tags, b only the old one.
	a := mustCreatePost(t, s, fp(35), "old", "target")
	b := mustCreatePost(t, s, fp(36), "old")

	if _, err := s.RenameTag(ctx, "old", "target"); err != nil {
		t.Fatalf("RenameTag merge: %v", err)
	}

	// a keeps a single link, b gains the target.
	if got := tagNames(t, s, a); len(got) != 1 || got[0] != "target" {
		t.Errorf("post a tags: %v", got)
	}
	if got := tagNames(t, s, b); len(got) != 1 || got[0] != "target" {
		t.Errorf("post b tags: %v", got)
	}

	// The old tag row is gone.
	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	for _, tag := range tags {
		if tag.NormalizedName == "old" {
			t.Error("old tag row survived the merge")
		}
	}
}

func TestRenameTagNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RenameTag(context.Background(), "ghost", "anything")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestListTagsCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreatePost(t, s, fp(37), "common", "rare")
	mustCreatePost(t, s, fp(38), "common")

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("tags: got %d, want 2", len(tags))
	}
	// Most used first.
	if tags[0].NormalizedName != "common" || tags[0].PostCount != 2 {
		t.Errorf("tags[0]: got %q count %d", tags[0].NormalizedName, tags[0].PostCount)
	}
	if tags[1].NormalizedName != "rare" || tags[1].PostCount != 1 {
		t.Errorf("tags[1]: got %q count %d", tags[1].NormalizedName, tags[1].PostCount)
	}
}

func TestSearchTagsByPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreatePost(t, s, fp(39), "blue_sky", "blue_sea", "red_sky")

	tags, err := s.SearchTagsByPrefix(ctx, "blue", 10)
	if err != nil {
		t.Fatalf("SearchTagsByPrefix: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("prefix matches: got %d, want 2", len(tags))
	}
	for _, tag := range tags {
		if tag.NormalizedName != "blue_sky" && tag.NormalizedName != "blue_sea" {
			t.Errorf("unexpected match %q", tag.NormalizedName)
		}
	}

	// Underscore in the prefix is literal, not a wildcard.
	tags, err = s.SearchTagsByPrefix(ctx, "blue_s", 10)
	if err != nil {
		t.Fatalf("SearchTagsByPrefix: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("underscore prefix: got %d, want 2", len(tags))
	}

	tags, err = s.SearchTagsByPrefix(ctx, "", 10)
	if err != nil {
		t.Fatalf("SearchTagsByPrefix empty: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("empty prefix should match nothing, got %d", len(tags))
	}
}
