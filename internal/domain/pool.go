package domain

import "time"

// Pool is a user-curated ordered collection of posts.
type Pool struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	PostCount int       `json:"post_count"`
}

// PoolPost is one entry in a pool's ordered sequence.
// Within a pool, positions are dense: 1..count with no gaps or duplicates.
type PoolPost struct {
	PoolID   int64 `json:"pool_id"`
	PostID   int64 `json:"post_id"`
	Position int   `json:"position"`
}

// PoolOrigin is the position of the first post in any pool.
const PoolOrigin = 1

// PoolNeighbors holds the posts immediately before and after a post in a
// pool's order. Nil at either boundary.
type PoolNeighbors struct {
	Previous *int64 `json:"previous_post_id,omitempty"`
	Next     *int64 `json:"next_post_id,omitempty"`
}

// VisibleTo reports whether the pool may be seen by the given actor.
func (p *Pool) VisibleTo(actor Actor) bool {
	if p.IsPublic || actor.IsAdmin {
		return true
	}
	return !actor.Anonymous() && p.OwnerID == actor.ID
}

// EditableBy reports whether the actor may mutate or delete the pool.
func (p *Pool) EditableBy(actor Actor) bool {
	if actor.Anonymous() {
		return false
	}
	return actor.IsAdmin || p.OwnerID == actor.ID
}
