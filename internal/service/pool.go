package service

import (
	"context"
	"log/slog"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/store"
	"github.com/pictorapp/pictor-server/internal/validation"
)

// PoolService manages pools and their ordered membership.
type PoolService struct {
	store    store.Store
	logger   *slog.Logger
	pageSize int
	validate *validation.Validator
}

// NewPoolService creates a new pool service. pageSize is the fixed page
// size for pool listings.
func NewPoolService(s store.Store, logger *slog.Logger, pageSize int) *PoolService {
	return &PoolService{
		store:    s,
		logger:   logger,
		pageSize: pageSize,
		validate: validation.New(),
	}
}

// poolName holds a pool name for validation.
type poolName struct {
	Name string `json:"name" validate:"required,max=250"`
}

// Create creates an empty private pool owned by the actor.
func (s *PoolService) Create(ctx context.Context, name string, actor domain.Actor) (*domain.Pool, error) {
	if actor.Anonymous() {
		return nil, errors.Forbidden("creating pools requires a signed-in user")
	}
	if err := s.validate.Validate(poolName{Name: name}); err != nil {
		return nil, err
	}

	id, err := s.store.CreatePool(ctx, name, actor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("pool created", "pool_id", id, "owner", actor.ID)
	return s.store.GetPool(ctx, id)
}

// Get retrieves a pool the actor may see.
func (s *PoolService) Get(ctx context.Context, id int64, actor domain.Actor) (*domain.Pool, error) {
	pool, err := s.store.GetPool(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pool.VisibleTo(actor) {
		return nil, errors.Forbidden("this pool is private")
	}
	return pool, nil
}

// Posts returns the pool's member posts in order.
func (s *PoolService) Posts(ctx context.Context, id int64, actor domain.Actor) ([]*domain.PostSummary, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.store.GetPoolPosts(ctx, id)
}

// List returns a page of pools visible to the actor, newest first.
func (s *PoolService) List(ctx context.Context, page int, actor domain.Actor) (*store.Page[*domain.Pool], error) {
	return s.store.ListPools(ctx, page, s.pageSize, actor)
}

// Rename changes a pool's name. Owner or admin only.
func (s *PoolService) Rename(ctx context.Context, id int64, name string, actor domain.Actor) (*domain.Pool, error) {
	if err := s.validate.Validate(poolName{Name: name}); err != nil {
		return nil, err
	}
	if err := s.requireEditable(ctx, id, actor); err != nil {
		return nil, err
	}
	if err := s.store.RenamePool(ctx, id, name); err != nil {
		return nil, err
	}
	return s.store.GetPool(ctx, id)
}

// SetVisibility toggles a pool between public and private. Owner or admin
// only.
func (s *PoolService) SetVisibility(ctx context.Context, id int64, isPublic bool, actor domain.Actor) (*domain.Pool, error) {
	if err := s.requireEditable(ctx, id, actor); err != nil {
		return nil, err
	}
	if err := s.store.SetPoolVisibility(ctx, id, isPublic); err != nil {
		return nil, err
	}
	return s.store.GetPool(ctx, id)
}

// Delete removes a pool. Member posts are untouched. Owner or admin only.
func (s *PoolService) Delete(ctx context.Context, id int64, actor domain.Actor) error {
	if err := s.requireEditable(ctx, id, actor); err != nil {
		return err
	}
	if err := s.store.DeletePool(ctx, id); err != nil {
		return err
	}
	s.logger.Info("pool deleted", "pool_id", id, "actor", actor.ID)
	return nil
}

// Append adds a post at the end of the pool and returns its position.
func (s *PoolService) Append(ctx context.Context, poolID, postID int64, actor domain.Actor) (int, error) {
	if err := s.requireEditable(ctx, poolID, actor); err != nil {
		return 0, err
	}
	return s.store.AppendToPool(ctx, poolID, postID)
}

// Remove takes a post out of the pool, keeping positions dense.
func (s *PoolService) Remove(ctx context.Context, poolID, postID int64, actor domain.Actor) error {
	if err := s.requireEditable(ctx, poolID, actor); err != nil {
		return err
	}
	return s.store.RemoveFromPool(ctx, poolID, postID)
}

// Move places a member post at a new position, shifting its neighbors.
func (s *PoolService) Move(ctx context.Context, poolID, postID int64, newPosition int, actor domain.Actor) error {
	if err := s.requireEditable(ctx, poolID, actor); err != nil {
		return err
	}
	return s.store.MovePost(ctx, poolID, postID, newPosition)
}

// Reorder rewrites the pool's order from a full permutation of its members.
func (s *PoolService) Reorder(ctx context.Context, poolID int64, orderedPostIDs []int64, actor domain.Actor) error {
	if err := s.requireEditable(ctx, poolID, actor); err != nil {
		return err
	}
	return s.store.ReorderPool(ctx, poolID, orderedPostIDs)
}

// Neighbors returns the previous and next posts around a member post, for
// sequential navigation.
func (s *PoolService) Neighbors(ctx context.Context, poolID, postID int64, actor domain.Actor) (*domain.PoolNeighbors, error) {
	if _, err := s.Get(ctx, poolID, actor); err != nil {
		return nil, err
	}
	return s.store.PoolNeighbors(ctx, poolID, postID)
}

// requireEditable loads the pool and enforces owner-or-admin mutation.
func (s *PoolService) requireEditable(ctx context.Context, id int64, actor domain.Actor) error {
	pool, err := s.store.GetPool(ctx, id)
	if err != nil {
		return err
	}
	if !pool.EditableBy(actor) {
		return errors.Forbidden("only the pool owner or an admin can modify this pool")
	}
	return nil
}
