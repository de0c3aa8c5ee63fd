package domain

// Tag is a global label attached to posts.
// NormalizedName is the source of truth for identity; Name preserves the
// casing the tag was first created with, for display.
type Tag struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	PostCount      int    `json:"post_count"` // Recomputed from post_tags, never stored
}

// PostTag is the many-to-many link between posts and tags.
// The (PostID, TagID) pair is unique.
type PostTag struct {
	PostID int64 `json:"post_id"`
	TagID  int64 `json:"tag_id"`
}
