package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/normalize"
	"github.com/pictorapp/pictor-server/internal/store"
)

// postColumns is the ordered list of columns selected in post queries.
// Must match the scan order in scanPost.
const postColumns = `id, fingerprint, media_kind, width, height, duration_secs,
	media_path, thumbnail_path, blurhash, title, description, rating,
	is_public, uploader_id, parent_id, uploaded_at`

// scanPost scans a sql.Row (or sql.Rows via its Scan method) into a domain.Post.
func scanPost(scanner interface{ Scan(dest ...any) error }) (*domain.Post, error) {
	var p domain.Post

	var (
		duration    sql.NullFloat64
		title       sql.NullString
		description sql.NullString
		parentID    sql.NullInt64
		uploadedAt  string
	)

	err := scanner.Scan(
		&p.ID,
		&p.Fingerprint,
		&p.Kind,
		&p.Width,
		&p.Height,
		&duration,
		&p.MediaPath,
		&p.ThumbPath,
		&p.BlurHash,
		&title,
		&description,
		&p.Rating,
		&p.IsPublic,
		&p.UploaderID,
		&parentID,
		&uploadedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Duration = fromNullFloat64(duration)
	p.Title = fromNullString(title)
	p.Description = fromNullString(description)
	p.ParentID = fromNullInt64(parentID)

	p.UploadedAt, err = parseTime(uploadedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePost inserts a new post with its initial tag set in one transaction.
// The fingerprint UNIQUE constraint is the final authority on deduplication;
// a violation is translated into a DuplicateMedia error carrying the id of
// the existing post.
func (s *Store) CreatePost(ctx context.Context, draft *domain.PostDraft, initialTags []string, actor domain.Actor) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.StoreFailure(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO posts (fingerprint, media_kind, width, height, duration_secs,
			media_path, thumbnail_path, blurhash, uploader_id, uploaded_at, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.Fingerprint,
		string(draft.Kind),
		draft.Width,
		draft.Height,
		nullFloat64(draft.Duration),
		draft.MediaPath,
		draft.ThumbPath,
		draft.BlurHash,
		actor.ID,
		formatTime(time.Now()),
		string(domain.RatingUnrated),
	)
	if err != nil {
		if isUniqueViolation(err, "posts.fingerprint") {
			var existingID int64
			if lookupErr := s.db.QueryRowContext(ctx,
				`SELECT id FROM posts WHERE fingerprint = ?`, draft.Fingerprint,
			).Scan(&existingID); lookupErr == nil {
				return 0, errors.DuplicateMedia(existingID)
			}
			return 0, errors.DuplicateMedia(0)
		}
		return 0, errors.StoreFailure(err)
	}

	postID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.StoreFailure(err)
	}

	for _, name := range normalize.TagNames(initialTags) {
		tagID, err := upsertTagTx(ctx, tx, name)
		if err != nil {
			return 0, errors.StoreFailure(err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`,
			postID, tagID,
		); err != nil {
			return 0, errors.StoreFailure(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.StoreFailure(err)
	}
	return postID, nil
}

// GetPost retrieves a post by id.
func (s *Store) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id)

	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("post %d not found", id)
	}
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	return p, nil
}

// GetPostByFingerprint retrieves a post by its content fingerprint.
func (s *Store) GetPostByFingerprint(ctx context.Context, fingerprint string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE fingerprint = ?`, fingerprint)

	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("no post with fingerprint %s", fingerprint)
	}
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	return p, nil
}

// UpdatePostDetails replaces a post's mutable fields. A parent reference
// must name an existing post, must not be the post itself, and must not
// create a cycle through the ancestor chain.
func (s *Store) UpdatePostDetails(ctx context.Context, id int64, details *store.PostDetails) error {
	if !details.Rating.Valid() {
		return errors.Validationf("invalid rating %q", details.Rating)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreFailure(err)
	}
	defer tx.Rollback()

	if details.ParentID != nil {
		if err := validateParentTx(ctx, tx, id, *details.ParentID); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, description = ?, rating = ?, is_public = ?, parent_id = ?
		WHERE id = ?`,
		nullString(details.Title),
		nullString(details.Description),
		string(details.Rating),
		details.IsPublic,
		nullInt64(details.ParentID),
		id,
	)
	if err != nil {
		return errors.StoreFailure(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.StoreFailure(err)
	}
	if rows == 0 {
		return errors.NotFoundf("post %d not found", id)
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}

// validateParentTx checks a proposed parent assignment inside a transaction.
// It walks the ancestor chain from the proposed parent; encountering the
// post itself means the assignment would close a cycle.
func validateParentTx(ctx context.Context, tx *sql.Tx, postID, parentID int64) error {
	if parentID == postID {
		return errors.Validation("a post cannot be its own parent")
	}

	current := parentID
	for {
		var next sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT parent_id FROM posts WHERE id = ?`, current).Scan(&next)
		if err == sql.ErrNoRows {
			if current == parentID {
				return errors.NotFoundf("parent post %d not found", parentID)
			}
			return nil
		}
		if err != nil {
			return errors.StoreFailure(err)
		}
		if !next.Valid {
			return nil
		}
		if next.Int64 == postID {
			return errors.Validationf("setting parent %d on post %d would create a cycle", parentID, postID)
		}
		current = next.Int64
	}
}

// DeletePost removes a post. Tag links, sources, and pool memberships
// cascade; children keep existing with their parent cleared. Pools that
// contained the post are renumbered to stay dense. Returns the filesystem
// paths of the post's media for cleanup by the caller.
func (s *Store) DeletePost(ctx context.Context, id int64) (*store.DeletedPostFiles, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer tx.Rollback()

	var files store.DeletedPostFiles
	err = tx.QueryRowContext(ctx,
		`SELECT media_path, thumbnail_path FROM posts WHERE id = ?`, id,
	).Scan(&files.MediaPath, &files.ThumbnailPath)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("post %d not found", id)
	}
	if err != nil {
		return nil, errors.StoreFailure(err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT pool_id FROM pool_posts WHERE post_id = ?`, id)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	poolIDs, err := collectInt64s(rows)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return nil, errors.StoreFailure(err)
	}

	for _, poolID := range poolIDs {
		if err := renumberPoolTx(ctx, tx, poolID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.StoreFailure(err)
	}
	return &files, nil
}

// GetChildren returns the posts whose parent is the given post, oldest first.
func (s *Store) GetChildren(ctx context.Context, id int64) ([]*domain.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE parent_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, errors.StoreFailure(err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailure(err)
	}

	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

// SetPostSources replaces the full source URL list for a post.
func (s *Store) SetPostSources(ctx context.Context, postID int64, urls []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreFailure(err)
	}
	defer tx.Rollback()

	if err := ensurePostExistsTx(ctx, tx, postID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM post_sources WHERE post_id = ?`, postID); err != nil {
		return errors.StoreFailure(err)
	}
	for _, url := range urls {
		if url == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_sources (post_id, url) VALUES (?, ?)`, postID, url); err != nil {
			return errors.StoreFailure(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}

// GetPostSources returns the source URLs attached to a post, in insert order.
func (s *Store) GetPostSources(ctx context.Context, postID int64) ([]*domain.PostSource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, url FROM post_sources WHERE post_id = ? ORDER BY id ASC`, postID)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	var sources []*domain.PostSource
	for rows.Next() {
		var src domain.PostSource
		if err := rows.Scan(&src.ID, &src.PostID, &src.URL); err != nil {
			return nil, errors.StoreFailure(err)
		}
		sources = append(sources, &src)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailure(err)
	}

	if sources == nil {
		sources = []*domain.PostSource{}
	}
	return sources, nil
}

// ensurePostExistsTx returns NotFound if the post id has no row.
func ensurePostExistsTx(ctx context.Context, tx *sql.Tx, postID int64) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM posts WHERE id = ?`, postID).Scan(&one)
	if err == sql.ErrNoRows {
		return errors.NotFoundf("post %d not found", postID)
	}
	if err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}

// collectInt64s drains a single-column int64 result set and closes it.
func collectInt64s(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
