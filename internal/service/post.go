// Package service provides the business logic layer between the HTTP edge
// and the catalog store, including actor permission enforcement.
package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/ingest"
	"github.com/pictorapp/pictor-server/internal/media/files"
	"github.com/pictorapp/pictor-server/internal/store"
	"github.com/pictorapp/pictor-server/internal/validation"
)

// PostService orchestrates upload, retrieval, editing, and deletion of posts.
type PostService struct {
	store    store.Store
	storage  *files.Storage
	ingestor *ingest.Ingestor
	logger   *slog.Logger
	validate *validation.Validator
}

// NewPostService creates a new post service.
func NewPostService(s store.Store, storage *files.Storage, ingestor *ingest.Ingestor, logger *slog.Logger) *PostService {
	return &PostService{
		store:    s,
		storage:  storage,
		ingestor: ingestor,
		logger:   logger,
		validate: validation.New(),
	}
}

// Upload ingests an upload stream and creates the post row with its
// initial tags. Anonymous actors cannot upload. A duplicate upload fails
// with DuplicateMedia naming the existing post; the already-stored media
// files are left untouched since the bytes are identical.
func (s *PostService) Upload(ctx context.Context, r io.Reader, tags []string, actor domain.Actor) (*domain.Post, error) {
	if actor.Anonymous() {
		return nil, errors.Forbidden("uploading requires a signed-in user")
	}

	draft, err := s.ingestor.Ingest(ctx, r)
	if err != nil {
		return nil, err
	}

	postID, err := s.store.CreatePost(ctx, draft, tags, actor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		"post_id", postID,
		"fingerprint", draft.Fingerprint,
		"uploader", actor.ID,
	)
	return s.store.GetPost(ctx, postID)
}

// Get retrieves a post the actor may see.
func (s *PostService) Get(ctx context.Context, id int64, actor domain.Actor) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(actor) {
		return nil, errors.Forbidden("this post is private")
	}
	return post, nil
}

// UpdateDetails edits a post's mutable fields. Only the uploader or an
// admin may edit.
func (s *PostService) UpdateDetails(ctx context.Context, id int64, details *store.PostDetails, actor domain.Actor) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.EditableBy(actor) {
		return nil, errors.Forbidden("only the uploader or an admin can edit this post")
	}

	if err := s.store.UpdatePostDetails(ctx, id, details); err != nil {
		return nil, err
	}
	return s.store.GetPost(ctx, id)
}

// sourceList holds a source URL list for validation before it reaches
// the store.
type sourceList struct {
	URLs []string `json:"urls" validate:"max=50,dive,required,url"`
}

// SetSources replaces a post's source URL list. Every entry must be a
// well-formed URL.
func (s *PostService) SetSources(ctx context.Context, id int64, urls []string, actor domain.Actor) error {
	if err := s.validate.Validate(sourceList{URLs: urls}); err != nil {
		return err
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !post.EditableBy(actor) {
		return errors.Forbidden("only the uploader or an admin can edit this post")
	}
	return s.store.SetPostSources(ctx, id, urls)
}

// GetSources returns a post's source URLs.
func (s *PostService) GetSources(ctx context.Context, id int64, actor domain.Actor) ([]*domain.PostSource, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.store.GetPostSources(ctx, id)
}

// Delete removes a post and its media files. Children survive with their
// parent link cleared; pools containing the post stay dense.
func (s *PostService) Delete(ctx context.Context, id int64, actor domain.Actor) error {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !post.EditableBy(actor) {
		return errors.Forbidden("only the uploader or an admin can delete this post")
	}

	deleted, err := s.store.DeletePost(ctx, id)
	if err != nil {
		return err
	}

	// Row is gone; file removal failures only leak disk, never state.
	if err := s.storage.Delete(filepath.Base(deleted.MediaPath)); err != nil {
		s.logger.Warn("failed to remove media file", "path", deleted.MediaPath, "error", err)
	}
	if err := s.storage.Delete(filepath.Base(deleted.ThumbnailPath)); err != nil {
		s.logger.Warn("failed to remove thumbnail", "path", deleted.ThumbnailPath, "error", err)
	}

	s.logger.Info("post deleted", "post_id", id, "actor", actor.ID)
	return nil
}

// Children returns the visible child posts of a post.
func (s *PostService) Children(ctx context.Context, id int64, actor domain.Actor) ([]*domain.Post, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}

	children, err := s.store.GetChildren(ctx, id)
	if err != nil {
		return nil, err
	}

	visible := make([]*domain.Post, 0, len(children))
	for _, child := range children {
		if child.VisibleTo(actor) {
			visible = append(visible, child)
		}
	}
	return visible, nil
}

// Pools returns the pools containing the post that the actor may see.
func (s *PostService) Pools(ctx context.Context, id int64, actor domain.Actor) ([]*domain.Pool, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.store.PoolsForPost(ctx, id, actor)
}
