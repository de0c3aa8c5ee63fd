package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createPool(t *testing.T, token, name string) PoolResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/pools", bearer(token), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, "create pool failed: %s", resp.Body.String())

	var pool PoolResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &pool))
	return pool
}

func (ts *testServer) appendToPool(t *testing.T, token string, poolID, postID int64) int {
	t.Helper()

	resp := ts.api.Post("/api/v1/pools/"+itoa(poolID)+"/posts", bearer(token), map[string]any{
		"post_id": postID,
	})
	require.Equal(t, http.StatusOK, resp.Code, "append failed: %s", resp.Body.String())

	var pos PoolPositionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &pos))
	return pos.Position
}

func (ts *testServer) poolOrder(t *testing.T, token string, poolID int64) []int64 {
	t.Helper()

	resp := ts.api.Get("/api/v1/pools/"+itoa(poolID)+"/posts", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var list SummaryListResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))

	ids := make([]int64, len(list.Posts))
	for i, p := range list.Posts {
		ids[i] = p.ID
	}
	return ids
}

func TestCreatePool(t *testing.T) {
	ts := newTestServer(t)

	pool := ts.createPool(t, uploaderToken, "Autumn walk")
	assert.Equal(t, "Autumn walk", pool.Name)
	assert.Equal(t, "user-1", pool.OwnerID)
	assert.False(t, pool.IsPublic)
	assert.Zero(t, pool.PostCount)

	resp := ts.api.Post("/api/v1/pools", map[string]any{"name": "anon"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestPoolOrderingFlow(t *testing.T) {
	ts := newTestServer(t)

	pool := ts.createPool(t, uploaderToken, "Sequence")
	a := ts.uploadPost(t, uploaderToken, 1, "")
	b := ts.uploadPost(t, uploaderToken, 2, "")
	c := ts.uploadPost(t, uploaderToken, 3, "")

	assert.Equal(t, 1, ts.appendToPool(t, uploaderToken, pool.ID, a.ID))
	assert.Equal(t, 2, ts.appendToPool(t, uploaderToken, pool.ID, b.ID))
	assert.Equal(t, 3, ts.appendToPool(t, uploaderToken, pool.ID, c.ID))

	// Appending a member again conflicts.
	resp := ts.api.Post("/api/v1/pools/"+itoa(pool.ID)+"/posts", bearer(uploaderToken), map[string]any{
		"post_id": b.ID,
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Move the tail to the front.
	resp = ts.api.Put("/api/v1/pools/"+itoa(pool.ID)+"/posts/"+itoa(c.ID)+"/position",
		bearer(uploaderToken), map[string]any{"position": 1})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, ts.poolOrder(t, uploaderToken, pool.ID))

	// A position past the end is rejected.
	resp = ts.api.Put("/api/v1/pools/"+itoa(pool.ID)+"/posts/"+itoa(c.ID)+"/position",
		bearer(uploaderToken), map[string]any{"position": 4})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Full reorder with an exact permutation.
	resp = ts.api.Put("/api/v1/pools/"+itoa(pool.ID)+"/order", bearer(uploaderToken), map[string]any{
		"post_ids": []int64{b.ID, c.ID, a.ID},
	})
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())
	assert.Equal(t, []int64{b.ID, c.ID, a.ID}, ts.poolOrder(t, uploaderToken, pool.ID))

	// A partial list is not a permutation.
	resp = ts.api.Put("/api/v1/pools/"+itoa(pool.ID)+"/order", bearer(uploaderToken), map[string]any{
		"post_ids": []int64{b.ID, a.ID},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Remove the head; the rest close up.
	resp = ts.api.Delete("/api/v1/pools/"+itoa(pool.ID)+"/posts/"+itoa(b.ID), bearer(uploaderToken))
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, []int64{c.ID, a.ID}, ts.poolOrder(t, uploaderToken, pool.ID))
}

func TestPoolNeighbors(t *testing.T) {
	ts := newTestServer(t)

	pool := ts.createPool(t, uploaderToken, "Walk")
	a := ts.uploadPost(t, uploaderToken, 1, "")
	b := ts.uploadPost(t, uploaderToken, 2, "")
	c := ts.uploadPost(t, uploaderToken, 3, "")
	for _, p := range []PostResponse{a, b, c} {
		ts.appendToPool(t, uploaderToken, pool.ID, p.ID)
	}

	resp := ts.api.Get("/api/v1/pools/"+itoa(pool.ID)+"/posts/"+itoa(b.ID)+"/neighbors", bearer(uploaderToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var neighbors PoolNeighborsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &neighbors))
	require.NotNil(t, neighbors.Previous)
	require.NotNil(t, neighbors.Next)
	assert.Equal(t, a.ID, *neighbors.Previous)
	assert.Equal(t, c.ID, *neighbors.Next)

	resp = ts.api.Get("/api/v1/pools/"+itoa(pool.ID)+"/posts/"+itoa(a.ID)+"/neighbors", bearer(uploaderToken))
	require.Equal(t, http.StatusOK, resp.Code)
	neighbors = PoolNeighborsResponse{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &neighbors))
	assert.Nil(t, neighbors.Previous)
	require.NotNil(t, neighbors.Next)
	assert.Equal(t, b.ID, *neighbors.Next)
}

func TestUpdatePoolAndVisibility(t *testing.T) {
	ts := newTestServer(t)

	pool := ts.createPool(t, uploaderToken, "Drafts")
	path := "/api/v1/pools/" + itoa(pool.ID)

	// Private pool is invisible to strangers and anonymous callers.
	assert.Equal(t, http.StatusForbidden, ts.api.Get(path, bearer(otherToken)).Code)
	assert.Equal(t, http.StatusForbidden, ts.api.Get(path).Code)

	resp := ts.api.Patch(path, bearer(uploaderToken), map[string]any{
		"name":      "Published",
		"is_public": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated PoolResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "Published", updated.Name)
	assert.True(t, updated.IsPublic)

	assert.Equal(t, http.StatusOK, ts.api.Get(path).Code)

	// Only the owner or an admin may edit.
	resp = ts.api.Patch(path, bearer(otherToken), map[string]any{"name": "hijack"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestListPoolsVisibility(t *testing.T) {
	ts := newTestServer(t)

	ts.createPool(t, uploaderToken, "Mine")
	public := ts.createPool(t, otherToken, "Theirs")

	resp := ts.api.Patch("/api/v1/pools/"+itoa(public.ID), bearer(otherToken), map[string]any{"is_public": true})
	require.Equal(t, http.StatusOK, resp.Code)

	var page PoolPageResponse

	// Anonymous callers see only the public pool.
	resp = ts.api.Get("/api/v1/pools")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Pools, 1)
	assert.Equal(t, public.ID, page.Pools[0].ID)

	// The owner sees both.
	resp = ts.api.Get("/api/v1/pools", bearer(uploaderToken))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Len(t, page.Pools, 2)
	assert.Equal(t, 1, page.TotalPages)
}

func TestDeletePoolKeepsPosts(t *testing.T) {
	ts := newTestServer(t)

	pool := ts.createPool(t, uploaderToken, "Ephemeral")
	post := ts.uploadPost(t, uploaderToken, 1, "")
	ts.appendToPool(t, uploaderToken, pool.ID, post.ID)

	resp := ts.api.Delete("/api/v1/pools/"+itoa(pool.ID), bearer(uploaderToken))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/v1/pools/"+itoa(pool.ID), bearer(uploaderToken)).Code)
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/posts/"+itoa(post.ID), bearer(uploaderToken)).Code)
}
