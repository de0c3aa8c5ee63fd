package sqlite

import (
	"context"
	"database/sql"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/normalize"
)

// upsertTagTx finds or creates a tag by its normalized name inside a
// transaction and returns its id. The name must already be normalized.
func upsertTagTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE normalized_name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO tags (name, normalized_name) VALUES (?, ?)`, name, name)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// SetTags replaces a post's tag set with the given names. Names are
// normalized first; links are diffed so untouched rows stay in place.
func (s *Store) SetTags(ctx context.Context, postID int64, names []string) error {
	wanted := normalize.TagNames(names)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreFailure(err)
	}
	defer tx.Rollback()

	if err := ensurePostExistsTx(ctx, tx, postID); err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT t.id, t.normalized_name
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ?`, postID)
	if err != nil {
		return errors.StoreFailure(err)
	}
	current := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return errors.StoreFailure(err)
		}
		current[name] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errors.StoreFailure(err)
	}

	wantedSet := make(map[string]struct{}, len(wanted))
	for _, name := range wanted {
		wantedSet[name] = struct{}{}
		if _, have := current[name]; have {
			continue
		}
		tagID, err := upsertTagTx(ctx, tx, name)
		if err != nil {
			return errors.StoreFailure(err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID); err != nil {
			return errors.StoreFailure(err)
		}
	}

	for name, tagID := range current {
		if _, keep := wantedSet[name]; keep {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM post_tags WHERE post_id = ? AND tag_id = ?`, postID, tagID); err != nil {
			return errors.StoreFailure(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}

// GetTagsForPost returns a post's tags ordered by normalized name.
func (s *Store) GetTagsForPost(ctx context.Context, postID int64) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.normalized_name
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ?
		ORDER BY t.normalized_name ASC`, postID)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.NormalizedName); err != nil {
			return nil, errors.StoreFailure(err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailure(err)
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// RenameTag renames a tag. If the new name already names another tag, the
// two are merged: the old tag's links move onto the target where not
// already present, and the old tag row is deleted. Returns the surviving
// tag.
func (s *Store) RenameTag(ctx context.Context, oldName, newName string) (*domain.Tag, error) {
	oldNorm := normalize.TagName(oldName)
	newNorm := normalize.TagName(newName)
	if newNorm == "" {
		return nil, errors.Validation("tag name normalizes to empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer tx.Rollback()

	var oldID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE normalized_name = ?`, oldNorm).Scan(&oldID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("tag %q not found", oldNorm)
	}
	if err != nil {
		return nil, errors.StoreFailure(err)
	}

	if oldNorm == newNorm {
		if err := tx.Commit(); err != nil {
			return nil, errors.StoreFailure(err)
		}
		return &domain.Tag{ID: oldID, Name: newNorm, NormalizedName: newNorm}, nil
	}

	var targetID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE normalized_name = ?`, newNorm).Scan(&targetID)
	switch {
	case err == sql.ErrNoRows:
		// Plain rename, no merge.
		if _, err := tx.ExecContext(ctx,
			`UPDATE tags SET name = ?, normalized_name = ? WHERE id = ?`,
			newNorm, newNorm, oldID); err != nil {
			return nil, errors.StoreFailure(err)
		}
		targetID = oldID
	case err != nil:
		return nil, errors.StoreFailure(err)
	default:
		// Merge: move links the target doesn't already have, drop the rest.
		if _, err := tx.ExecContext(ctx, `
			UPDATE post_tags SET tag_id = ?
			WHERE tag_id = ? AND post_id NOT IN (
				SELECT post_id FROM post_tags WHERE tag_id = ?
			)`, targetID, oldID, targetID); err != nil {
			return nil, errors.StoreFailure(err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM post_tags WHERE tag_id = ?`, oldID); err != nil {
			return nil, errors.StoreFailure(err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tags WHERE id = ?`, oldID); err != nil {
			return nil, errors.StoreFailure(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.StoreFailure(err)
	}
	return &domain.Tag{ID: targetID, Name: newNorm, NormalizedName: newNorm}, nil
}

// ListTags returns all tags with usage counts, most used first, then by
// name for a stable order. Counts are computed from post_tags on the fly.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.normalized_name, COUNT(pt.post_id)
		FROM tags t LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY COUNT(pt.post_id) DESC, t.normalized_name ASC`)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// SearchTagsByPrefix returns up to limit tags whose normalized name starts
// with the normalized prefix, most used first. Used for autocomplete.
func (s *Store) SearchTagsByPrefix(ctx context.Context, prefix string, limit int) ([]*domain.Tag, error) {
	norm := normalize.TagName(prefix)
	if norm == "" {
		return []*domain.Tag{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.normalized_name, COUNT(pt.post_id)
		FROM tags t LEFT JOIN post_tags pt ON pt.tag_id = t.id
		WHERE t.normalized_name LIKE ? ESCAPE '\'
		GROUP BY t.id
		ORDER BY COUNT(pt.post_id) DESC, t.normalized_name ASC
		LIMIT ?`, escapeLike(norm)+"%", limit)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// collectTags drains a (id, name, normalized_name, count) result set.
func collectTags(rows *sql.Rows) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.NormalizedName, &t.PostCount); err != nil {
			return nil, errors.StoreFailure(err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailure(err)
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}
