// Package store defines the persistence interface for the Pictor server.
package store

import (
	"context"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/query"
)

// TagCount pairs a tag with the number of matching posts carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Posts
	CreatePost(ctx context.Context, draft *domain.PostDraft, initialTags []string, actor domain.Actor) (int64, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	GetPostByFingerprint(ctx context.Context, fingerprint string) (*domain.Post, error)
	UpdatePostDetails(ctx context.Context, id int64, details *PostDetails) error
	DeletePost(ctx context.Context, id int64) (*DeletedPostFiles, error)
	GetChildren(ctx context.Context, id int64) ([]*domain.Post, error)
	SetPostSources(ctx context.Context, postID int64, urls []string) error
	GetPostSources(ctx context.Context, postID int64) ([]*domain.PostSource, error)

	// Tags
	SetTags(ctx context.Context, postID int64, names []string) error
	GetTagsForPost(ctx context.Context, postID int64) ([]*domain.Tag, error)
	RenameTag(ctx context.Context, oldName, newName string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	SearchTagsByPrefix(ctx context.Context, prefix string, limit int) ([]*domain.Tag, error)

	// Search
	SearchPosts(ctx context.Context, expr *query.Expression, page, pageSize int, actor domain.Actor) (*Page[*domain.PostSummary], error)
	TagsInResults(ctx context.Context, expr *query.Expression, actor domain.Actor) ([]TagCount, error)

	// Pools
	CreatePool(ctx context.Context, name string, actor domain.Actor) (int64, error)
	GetPool(ctx context.Context, id int64) (*domain.Pool, error)
	GetPoolPosts(ctx context.Context, poolID int64) ([]*domain.PostSummary, error)
	RenamePool(ctx context.Context, id int64, name string) error
	SetPoolVisibility(ctx context.Context, id int64, isPublic bool) error
	DeletePool(ctx context.Context, id int64) error
	ListPools(ctx context.Context, page, pageSize int, actor domain.Actor) (*Page[*domain.Pool], error)

	// Pool ordering
	AppendToPool(ctx context.Context, poolID, postID int64) (int, error)
	RemoveFromPool(ctx context.Context, poolID, postID int64) error
	MovePost(ctx context.Context, poolID, postID int64, newPosition int) error
	ReorderPool(ctx context.Context, poolID int64, orderedPostIDs []int64) error
	PoolNeighbors(ctx context.Context, poolID, postID int64) (*domain.PoolNeighbors, error)
	PoolsForPost(ctx context.Context, postID int64, actor domain.Actor) ([]*domain.Pool, error)
}

// PostDetails carries the mutable fields of a post for UpdatePostDetails.
// Nil pointer fields on Title, Description, and ParentID clear the value.
type PostDetails struct {
	Title       *string
	Description *string
	Rating      domain.Rating
	IsPublic    bool
	ParentID    *int64
}

// DeletedPostFiles lists the filesystem artifacts of a deleted post so the
// caller can remove them after the row is gone.
type DeletedPostFiles struct {
	MediaPath     string
	ThumbnailPath string
}
