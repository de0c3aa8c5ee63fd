package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/store"
)

// poolColumns is the ordered list of columns selected in pool queries.
// The trailing subquery keeps PostCount live without a stored counter.
const poolColumns = `id, name, owner_id, is_public, created_at,
	(SELECT COUNT(*) FROM pool_posts WHERE pool_id = pools.id)`

// scanPool scans a pool row including its member count.
func scanPool(scanner interface{ Scan(dest ...any) error }) (*domain.Pool, error) {
	var p domain.Pool
	var createdAt string

	err := scanner.Scan(
		&p.ID,
		&p.Name,
		&p.OwnerID,
		&p.IsPublic,
		&createdAt,
		&p.PostCount,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePool creates an empty private pool owned by the actor.
func (s *Store) CreatePool(ctx context.Context, name string, actor domain.Actor) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.Validation("pool name is required")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO pools (name, owner_id, is_public, created_at)
		VALUES (?, ?, 0, ?)`,
		name, actor.ID, formatTime(time.Now()))
	if err != nil {
		return 0, errors.StoreFailure(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.StoreFailure(err)
	}
	return id, nil
}

// GetPool retrieves a pool by id, including its member count.
func (s *Store) GetPool(ctx context.Context, id int64) (*domain.Pool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+poolColumns+` FROM pools WHERE id = ?`, id)

	p, err := scanPool(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("pool %d not found", id)
	}
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	return p, nil
}

// GetPoolPosts returns the pool's member posts in position order.
func (s *Store) GetPoolPosts(ctx context.Context, poolID int64) ([]*domain.PostSummary, error) {
	if _, err := s.GetPool(ctx, poolID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM pool_posts pp
		JOIN posts p ON p.id = pp.post_id
		WHERE pp.pool_id = ?
		ORDER BY pp.position ASC`, poolID)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	var items []*domain.PostSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, errors.StoreFailure(err)
		}
		items = append(items, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailure(err)
	}

	if err := s.attachTags(ctx, items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.PostSummary{}
	}
	return items, nil
}

// RenamePool changes a pool's display name.
func (s *Store) RenamePool(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Validation("pool name is required")
	}
	return s.updatePool(ctx, id, `UPDATE pools SET name = ? WHERE id = ?`, name, id)
}

// SetPoolVisibility toggles a pool between public and private.
func (s *Store) SetPoolVisibility(ctx context.Context, id int64, isPublic bool) error {
	return s.updatePool(ctx, id, `UPDATE pools SET is_public = ? WHERE id = ?`, isPublic, id)
}

func (s *Store) updatePool(ctx context.Context, id int64, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.StoreFailure(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.StoreFailure(err)
	}
	if rows == 0 {
		return errors.NotFoundf("pool %d not found", id)
	}
	return nil
}

// DeletePool removes a pool; memberships cascade, posts are untouched.
func (s *Store) DeletePool(ctx context.Context, id int64) error {
	return s.updatePool(ctx, id, `DELETE FROM pools WHERE id = ?`, id)
}

// ListPools returns pools visible to the actor, newest first, paginated.
func (s *Store) ListPools(ctx context.Context, page, pageSize int, actor domain.Actor) (*store.Page[*domain.Pool], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return nil, errors.Validationf("invalid page size %d", pageSize)
	}

	where, args := poolVisibilityFilter(actor)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pools WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, errors.StoreFailure(err)
	}

	listArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+poolColumns+` FROM pools WHERE `+where+`
		ORDER BY id DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	var pools []*domain.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, errors.StoreFailure(err)
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailure(err)
	}

	return store.NewPage(pools, page, pageSize, total), nil
}

// PoolsForPost returns the pools containing the post that are visible to
// the actor, newest first.
func (s *Store) PoolsForPost(ctx context.Context, postID int64, actor domain.Actor) ([]*domain.Pool, error) {
	where, args := poolVisibilityFilter(actor)
	args = append([]any{postID}, args...)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+poolColumns+` FROM pools WHERE id IN (
			SELECT pool_id FROM pool_posts WHERE post_id = ?
		) AND `+where+` ORDER BY id DESC`, args...)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	var pools []*domain.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, errors.StoreFailure(err)
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailure(err)
	}

	if pools == nil {
		pools = []*domain.Pool{}
	}
	return pools, nil
}

// poolVisibilityFilter compiles the actor's visibility into a WHERE
// fragment over the pools table.
func poolVisibilityFilter(actor domain.Actor) (string, []any) {
	switch {
	case actor.IsAdmin:
		return "1=1", nil
	case actor.Anonymous():
		return "is_public = 1", nil
	default:
		return "(is_public = 1 OR owner_id = ?)", []any{actor.ID}
	}
}
