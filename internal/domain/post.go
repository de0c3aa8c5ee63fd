// Package domain contains the core entities of the Pictor image board.
package domain

import "time"

// MediaKind classifies a post's media by inspected content, never by filename.
type MediaKind string

// Supported media kinds.
const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Valid reports whether the kind is one of the supported values.
func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

// Post is a single uploaded media item in the catalog.
// The ID is assigned by the store and is monotonic; newest posts sort first.
type Post struct {
	ID          int64      `json:"id"`
	Fingerprint string     `json:"fingerprint"` // SHA-256 hex of the raw upload, dedup key
	Kind        MediaKind  `json:"media_kind"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Duration    *float64   `json:"duration_secs,omitempty"` // Video only
	MediaPath   string     `json:"media_path"`
	ThumbPath   string     `json:"thumbnail_path"`
	BlurHash    string     `json:"blurhash,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Rating      Rating     `json:"rating"`
	IsPublic    bool       `json:"is_public"`
	UploaderID  string     `json:"uploader_id"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	UploadedAt  time.Time  `json:"uploaded_at"`
}

// PostDraft is the outcome of a successful ingest, not yet persisted.
// The caller turns it into a Post row in a single transaction.
type PostDraft struct {
	Fingerprint string
	Kind        MediaKind
	Width       int
	Height      int
	Duration    *float64
	MediaPath   string
	ThumbPath   string
	BlurHash    string
}

// PostSummary is the listing projection returned by search and pool queries.
type PostSummary struct {
	ID         int64     `json:"id"`
	ThumbPath  string    `json:"thumbnail_path"`
	MediaPath  string    `json:"media_path"`
	BlurHash   string    `json:"blurhash,omitempty"`
	Kind       MediaKind `json:"media_kind"`
	Rating     Rating    `json:"rating"`
	Title      *string   `json:"title,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	Tags       []string  `json:"tags"`
}

// PostSource is an external origin URL attached to a post.
type PostSource struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	URL    string `json:"url"`
}

// VisibleTo reports whether the post may be seen by the given actor.
func (p *Post) VisibleTo(actor Actor) bool {
	if p.IsPublic || actor.IsAdmin {
		return true
	}
	return !actor.Anonymous() && p.UploaderID == actor.ID
}

// EditableBy reports whether the actor may mutate or delete the post.
func (p *Post) EditableBy(actor Actor) bool {
	if actor.Anonymous() {
		return false
	}
	return actor.IsAdmin || p.UploaderID == actor.ID
}
