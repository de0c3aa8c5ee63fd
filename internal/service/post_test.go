package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/ingest"
	"github.com/pictorapp/pictor-server/internal/media/files"
	"github.com/pictorapp/pictor-server/internal/store"
	"github.com/pictorapp/pictor-server/internal/store/sqlite"
)

var (
	uploader = domain.Actor{ID: "user-1"}
	other    = domain.Actor{ID: "user-2"}
	admin    = domain.Actor{ID: "admin-1", IsAdmin: true}
)

type testEnv struct {
	store   *sqlite.Store
	storage *files.Storage
	posts   *PostService
	tags    *TagService
	search  *SearchService
	pools   *PoolService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	storage, err := files.New(filepath.Join(dir, "media"))
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	ingestor := ingest.New(storage, s, nil, logger, ingest.Config{
		MaxUploadBytes:        1 << 20,
		MaxThumbnailDimension: 192,
	})

	return &testEnv{
		store:   s,
		storage: storage,
		posts:   NewPostService(s, storage, ingestor, logger),
		tags:    NewTagService(s, logger),
		search:  NewSearchService(s, logger, 50),
		pools:   NewPoolService(s, logger, 25),
	}
}

// pngUpload builds a PNG whose pixel seed makes the bytes unique.
func pngUpload(t *testing.T, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: seed, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func mustUpload(t *testing.T, env *testEnv, seed uint8, actor domain.Actor, tags ...string) *domain.Post {
	t.Helper()
	post, err := env.posts.Upload(context.Background(), bytes.NewReader(pngUpload(t, seed)), tags, actor)
	require.NoError(t, err)
	return post
}

func TestUploadCreatesPost(t *testing.T) {
	env := newTestEnv(t)

	post := mustUpload(t, env, 1, uploader, "First Tag")

	assert.Equal(t, domain.MediaImage, post.Kind)
	assert.Equal(t, 64, post.Width)
	assert.Equal(t, uploader.ID, post.UploaderID)
	assert.Equal(t, domain.RatingUnrated, post.Rating)
	assert.False(t, post.IsPublic)

	tags, err := env.tags.TagsForPost(context.Background(), post.ID, uploader)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "first_tag", tags[0].NormalizedName)

	_, err = os.Stat(post.MediaPath)
	assert.NoError(t, err, "media file should exist")
}

func TestUploadAnonymousForbidden(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.posts.Upload(context.Background(), bytes.NewReader(pngUpload(t, 2)), nil, domain.AnonymousActor)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}

func TestUploadDuplicate(t *testing.T) {
	env := newTestEnv(t)

	first := mustUpload(t, env, 3, uploader)

	_, err := env.posts.Upload(context.Background(), bytes.NewReader(pngUpload(t, 3)), nil, other)
	require.True(t, errors.Is(err, errors.ErrDuplicateMedia))

	id, ok := errors.ExistingPostID(err)
	require.True(t, ok)
	assert.Equal(t, first.ID, id)

	// The original post's files are untouched.
	_, statErr := os.Stat(first.MediaPath)
	assert.NoError(t, statErr)
}

func TestGetVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := mustUpload(t, env, 4, uploader)

	// Private: owner and admin only.
	_, err := env.posts.Get(ctx, post.ID, uploader)
	assert.NoError(t, err)
	_, err = env.posts.Get(ctx, post.ID, admin)
	assert.NoError(t, err)
	_, err = env.posts.Get(ctx, post.ID, other)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	_, err = env.posts.Get(ctx, post.ID, domain.AnonymousActor)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	// Published: everyone.
	_, err = env.posts.UpdateDetails(ctx, post.ID, &store.PostDetails{Rating: "s", IsPublic: true}, uploader)
	require.NoError(t, err)
	_, err = env.posts.Get(ctx, post.ID, domain.AnonymousActor)
	assert.NoError(t, err)
}

func TestUpdateDetailsPermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := mustUpload(t, env, 5, uploader)

	details := &store.PostDetails{Rating: "q", IsPublic: true}
	_, err := env.posts.UpdateDetails(ctx, post.ID, details, other)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	updated, err := env.posts.UpdateDetails(ctx, post.ID, details, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.Rating("q"), updated.Rating)
}

func TestDeleteRemovesFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := mustUpload(t, env, 6, uploader)

	err := env.posts.Delete(ctx, post.ID, other)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	require.NoError(t, env.posts.Delete(ctx, post.ID, uploader))

	_, err = env.posts.Get(ctx, post.ID, uploader)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = os.Stat(post.MediaPath)
	assert.True(t, os.IsNotExist(err), "media file should be removed")
	_, err = os.Stat(post.ThumbPath)
	assert.True(t, os.IsNotExist(err), "thumbnail should be removed")
}

func TestChildrenFilteredByVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := mustUpload(t, env, 7, uploader)
	childPublic := mustUpload(t, env, 8, uploader)
	childPrivate := mustUpload(t, env, 9, uploader)

	_, err := env.posts.UpdateDetails(ctx, parent.ID, &store.PostDetails{Rating: "s", IsPublic: true}, uploader)
	require.NoError(t, err)
	_, err = env.posts.UpdateDetails(ctx, childPublic.ID, &store.PostDetails{Rating: "s", IsPublic: true, ParentID: &parent.ID}, uploader)
	require.NoError(t, err)
	_, err = env.posts.UpdateDetails(ctx, childPrivate.ID, &store.PostDetails{Rating: "s", ParentID: &parent.ID}, uploader)
	require.NoError(t, err)

	kids, err := env.posts.Children(ctx, parent.ID, domain.AnonymousActor)
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, childPublic.ID, kids[0].ID)

	kids, err = env.posts.Children(ctx, parent.ID, uploader)
	require.NoError(t, err)
	assert.Len(t, kids, 2)
}

func TestSourcesRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := mustUpload(t, env, 10, uploader)

	err := env.posts.SetSources(ctx, post.ID, []string{"https://example.com/origin"}, other)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	require.NoError(t, env.posts.SetSources(ctx, post.ID, []string{"https://example.com/origin"}, uploader))
	sources, err := env.posts.GetSources(ctx, post.ID, uploader)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "https://example.com/origin", sources[0].URL)
}

func TestSetSourcesRejectsMalformedURL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	post := mustUpload(t, env, 11, uploader)

	err := env.posts.SetSources(ctx, post.ID, []string{"not a url"}, uploader)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	// The failed update must not disturb the stored list.
	sources, err := env.posts.GetSources(ctx, post.ID, uploader)
	require.NoError(t, err)
	assert.Empty(t, sources)
}
