package sqlite

import (
	"context"
	"database/sql"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
)

// Pool ordering. Positions within a pool are dense, 1-based, and unique.
// SQLite checks UNIQUE per statement, so any renumbering that could
// transiently collide runs in two phases inside one transaction: positions
// are first written as their negatives (which cannot collide with live
// positions), then flipped back in a single update.

// AppendToPool adds a post at the end of a pool and returns its position.
func (s *Store) AppendToPool(ctx context.Context, poolID, postID int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.StoreFailure(err)
	}
	defer tx.Rollback()

	if err := ensurePoolExistsTx(ctx, tx, poolID); err != nil {
		return 0, err
	}
	if err := ensurePostExistsTx(ctx, tx, postID); err != nil {
		return 0, err
	}

	if _, err := memberPositionTx(ctx, tx, poolID, postID); err == nil {
		return 0, errors.AlreadyInPool("post is already in this pool")
	} else if !errors.Is(err, errors.ErrNotFound) {
		return 0, err
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pool_posts WHERE pool_id = ?`, poolID).Scan(&count); err != nil {
		return 0, errors.StoreFailure(err)
	}

	position := count + 1
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pool_posts (pool_id, post_id, position) VALUES (?, ?, ?)`,
		poolID, postID, position); err != nil {
		if isUniqueViolation(err, "") {
			return 0, errors.AlreadyInPool("post is already in this pool")
		}
		return 0, errors.StoreFailure(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.StoreFailure(err)
	}
	return position, nil
}

// RemoveFromPool removes a post from a pool and closes the gap so the
// remaining positions stay dense.
func (s *Store) RemoveFromPool(ctx context.Context, poolID, postID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreFailure(err)
	}
	defer tx.Rollback()

	if err := ensurePoolExistsTx(ctx, tx, poolID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM pool_posts WHERE pool_id = ? AND post_id = ?`, poolID, postID)
	if err != nil {
		return errors.StoreFailure(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.StoreFailure(err)
	}
	if rows == 0 {
		return errors.NotFoundf("post %d is not in pool %d", postID, poolID)
	}

	if err := renumberPoolTx(ctx, tx, poolID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}

// MovePost moves a member post to newPosition, shifting the posts in
// between by one. Positions outside [1, count] are rejected.
func (s *Store) MovePost(ctx context.Context, poolID, postID int64, newPosition int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreFailure(err)
	}
	defer tx.Rollback()

	if err := ensurePoolExistsTx(ctx, tx, poolID); err != nil {
		return err
	}

	oldPosition, err := memberPositionTx(ctx, tx, poolID, postID)
	if err != nil {
		return err
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pool_posts WHERE pool_id = ?`, poolID).Scan(&count); err != nil {
		return errors.StoreFailure(err)
	}
	if newPosition < domain.PoolOrigin || newPosition > count {
		return errors.InvalidPositionf("position %d is outside [1, %d]", newPosition, count)
	}
	if newPosition == oldPosition {
		return tx.Commit()
	}

	// Phase one: write the shifted block and the moved post as negatives.
	if newPosition < oldPosition {
		_, err = tx.ExecContext(ctx, `
			UPDATE pool_posts SET position = -(position + 1)
			WHERE pool_id = ? AND position >= ? AND position < ?`,
			poolID, newPosition, oldPosition)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE pool_posts SET position = -(position - 1)
			WHERE pool_id = ? AND position > ? AND position <= ?`,
			poolID, oldPosition, newPosition)
	}
	if err != nil {
		return errors.StoreFailure(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE pool_posts SET position = ?
		WHERE pool_id = ? AND post_id = ?`,
		-newPosition, poolID, postID); err != nil {
		return errors.StoreFailure(err)
	}

	if err := flipNegativePositionsTx(ctx, tx, poolID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}

// ReorderPool rewrites the pool's order to match orderedPostIDs, which
// must be an exact permutation of the current membership. On any mismatch
// nothing changes.
func (s *Store) ReorderPool(ctx context.Context, poolID int64, orderedPostIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreFailure(err)
	}
	defer tx.Rollback()

	if err := ensurePoolExistsTx(ctx, tx, poolID); err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT post_id FROM pool_posts WHERE pool_id = ?`, poolID)
	if err != nil {
		return errors.StoreFailure(err)
	}
	memberIDs, err := collectInt64s(rows)
	if err != nil {
		return errors.StoreFailure(err)
	}

	if len(orderedPostIDs) != len(memberIDs) {
		return errors.MembershipMismatch("ordering must name every pool member exactly once")
	}
	members := make(map[int64]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(orderedPostIDs))
	for _, id := range orderedPostIDs {
		if _, ok := members[id]; !ok {
			return errors.MembershipMismatch("ordering must name every pool member exactly once")
		}
		if _, dup := seen[id]; dup {
			return errors.MembershipMismatch("ordering must name every pool member exactly once")
		}
		seen[id] = struct{}{}
	}

	for i, id := range orderedPostIDs {
		if _, err := tx.ExecContext(ctx, `
			UPDATE pool_posts SET position = ?
			WHERE pool_id = ? AND post_id = ?`,
			-(i + 1), poolID, id); err != nil {
			return errors.StoreFailure(err)
		}
	}
	if err := flipNegativePositionsTx(ctx, tx, poolID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}

// PoolNeighbors returns the post ids immediately before and after the
// given post in the pool's order. Nil at either boundary.
func (s *Store) PoolNeighbors(ctx context.Context, poolID, postID int64) (*domain.PoolNeighbors, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer tx.Rollback()

	if err := ensurePoolExistsTx(ctx, tx, poolID); err != nil {
		return nil, err
	}

	position, err := memberPositionTx(ctx, tx, poolID, postID)
	if err != nil {
		return nil, err
	}

	neighbors := &domain.PoolNeighbors{}
	var prev int64
	err = tx.QueryRowContext(ctx,
		`SELECT post_id FROM pool_posts WHERE pool_id = ? AND position = ?`,
		poolID, position-1).Scan(&prev)
	if err == nil {
		neighbors.Previous = &prev
	} else if err != sql.ErrNoRows {
		return nil, errors.StoreFailure(err)
	}

	var next int64
	err = tx.QueryRowContext(ctx,
		`SELECT post_id FROM pool_posts WHERE pool_id = ? AND position = ?`,
		poolID, position+1).Scan(&next)
	if err == nil {
		neighbors.Next = &next
	} else if err != sql.ErrNoRows {
		return nil, errors.StoreFailure(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.StoreFailure(err)
	}
	return neighbors, nil
}

// memberPositionTx returns the post's position in the pool, or NotFound.
func memberPositionTx(ctx context.Context, tx *sql.Tx, poolID, postID int64) (int, error) {
	var position int
	err := tx.QueryRowContext(ctx,
		`SELECT position FROM pool_posts WHERE pool_id = ? AND post_id = ?`,
		poolID, postID).Scan(&position)
	if err == sql.ErrNoRows {
		return 0, errors.NotFoundf("post %d is not in pool %d", postID, poolID)
	}
	if err != nil {
		return 0, errors.StoreFailure(err)
	}
	return position, nil
}

// ensurePoolExistsTx returns NotFound if the pool id has no row.
func ensurePoolExistsTx(ctx context.Context, tx *sql.Tx, poolID int64) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM pools WHERE id = ?`, poolID).Scan(&one)
	if err == sql.ErrNoRows {
		return errors.NotFoundf("pool %d not found", poolID)
	}
	if err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}

// renumberPoolTx rewrites the pool's positions to 1..count in the current
// order, closing any gaps left by deletions.
func renumberPoolTx(ctx context.Context, tx *sql.Tx, poolID int64) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT post_id FROM pool_posts WHERE pool_id = ? ORDER BY position ASC`, poolID)
	if err != nil {
		return errors.StoreFailure(err)
	}
	ids, err := collectInt64s(rows)
	if err != nil {
		return errors.StoreFailure(err)
	}

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE pool_posts SET position = ?
			WHERE pool_id = ? AND post_id = ?`,
			-(i + 1), poolID, id); err != nil {
			return errors.StoreFailure(err)
		}
	}
	return flipNegativePositionsTx(ctx, tx, poolID)
}

// flipNegativePositionsTx completes a two-phase renumber by making all
// staged negative positions positive again.
func flipNegativePositionsTx(ctx context.Context, tx *sql.Tx, poolID int64) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE pool_posts SET position = -position
		WHERE pool_id = ? AND position < 0`, poolID); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}
