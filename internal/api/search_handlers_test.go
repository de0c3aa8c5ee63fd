package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) publish(t *testing.T, post PostResponse, rating string) {
	t.Helper()

	resp := ts.api.Put("/api/v1/posts/"+itoa(post.ID), bearer(adminToken), map[string]any{
		"rating":    rating,
		"is_public": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func (ts *testServer) search(t *testing.T, query, auth string) SearchPageResponse {
	t.Helper()

	path := "/api/v1/posts?q=" + query
	args := []any{}
	if auth != "" {
		args = append(args, auth)
	}

	rec := ts.api.Get(path, args...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var r SearchPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r
}

func TestSearchPosts(t *testing.T) {
	ts := newTestServer(t)

	forest := ts.uploadPost(t, uploaderToken, 1, "forest river")
	night := ts.uploadPost(t, uploaderToken, 2, "forest night")
	ts.publish(t, forest, "s")
	ts.publish(t, night, "q")

	page := ts.search(t, "forest", "")
	require.Len(t, page.Posts, 2)
	// Newest first.
	assert.Equal(t, night.ID, page.Posts[0].ID)
	assert.Equal(t, forest.ID, page.Posts[1].ID)

	page = ts.search(t, "forest+-night", "")
	require.Len(t, page.Posts, 1)
	assert.Equal(t, forest.ID, page.Posts[0].ID)

	page = ts.search(t, "forest+rating:s", "")
	require.Len(t, page.Posts, 1)
	assert.Equal(t, forest.ID, page.Posts[0].ID)

	// Contradiction yields an empty page, not an error.
	page = ts.search(t, "forest+-forest", "")
	assert.Empty(t, page.Posts)
	assert.Equal(t, 1, page.TotalPages)
}

func TestSearchVisibility(t *testing.T) {
	ts := newTestServer(t)

	private := ts.uploadPost(t, uploaderToken, 1, "secret")

	// Invisible to strangers and anonymous callers, visible to the owner.
	assert.Empty(t, ts.search(t, "secret", "").Posts)
	assert.Empty(t, ts.search(t, "secret", bearer(otherToken)).Posts)

	page := ts.search(t, "secret", bearer(uploaderToken))
	require.Len(t, page.Posts, 1)
	assert.Equal(t, private.ID, page.Posts[0].ID)
}

func TestSearchRelatedTags(t *testing.T) {
	ts := newTestServer(t)

	a := ts.uploadPost(t, uploaderToken, 1, "forest river")
	b := ts.uploadPost(t, uploaderToken, 2, "forest night")
	ts.publish(t, a, "s")
	ts.publish(t, b, "s")

	resp := ts.api.Get("/api/v1/posts/related-tags?q=forest")
	require.Equal(t, http.StatusOK, resp.Code)

	var related RelatedTagsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &related))
	require.Len(t, related.Tags, 3)
	assert.Equal(t, TagCountResponse{Name: "forest", Count: 2}, related.Tags[0])
}
