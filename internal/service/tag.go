package service

import (
	"context"
	"log/slog"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/store"
)

// TagService manages tag assignment and the global tag namespace.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(s store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  s,
		logger: logger,
	}
}

// SetTags replaces a post's tag set. Only the uploader or an admin may
// retag a post.
func (s *TagService) SetTags(ctx context.Context, postID int64, names []string, actor domain.Actor) ([]*domain.Tag, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.EditableBy(actor) {
		return nil, errors.Forbidden("only the uploader or an admin can tag this post")
	}

	if err := s.store.SetTags(ctx, postID, names); err != nil {
		return nil, err
	}
	return s.store.GetTagsForPost(ctx, postID)
}

// TagsForPost returns the tags of a post the actor may see.
func (s *TagService) TagsForPost(ctx context.Context, postID int64, actor domain.Actor) ([]*domain.Tag, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(actor) {
		return nil, errors.Forbidden("this post is private")
	}
	return s.store.GetTagsForPost(ctx, postID)
}

// Rename renames a tag everywhere it is used, merging into an existing
// tag when the new name already exists. Admin only: renames are global.
func (s *TagService) Rename(ctx context.Context, oldName, newName string, actor domain.Actor) (*domain.Tag, error) {
	if !actor.IsAdmin {
		return nil, errors.Forbidden("renaming tags requires an admin")
	}

	tag, err := s.store.RenameTag(ctx, oldName, newName)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag renamed", "old", oldName, "new", tag.NormalizedName, "actor", actor.ID)
	return tag, nil
}

// List returns every tag with its usage count, most used first.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// Autocomplete returns up to limit tags matching the prefix, for
// client-side tag entry.
func (s *TagService) Autocomplete(ctx context.Context, prefix string, limit int) ([]*domain.Tag, error) {
	return s.store.SearchTagsByPrefix(ctx, prefix, limit)
}
