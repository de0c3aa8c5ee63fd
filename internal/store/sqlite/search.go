package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/errors"
	"github.com/pictorapp/pictor-server/internal/query"
	"github.com/pictorapp/pictor-server/internal/store"
)

// summaryColumns is the projection selected for post listings.
// Must match the scan order in scanSummary.
const summaryColumns = `p.id, p.thumbnail_path, p.media_path, p.blurhash,
	p.media_kind, p.rating, p.title, p.uploaded_at`

// scanSummary scans one listing row into a domain.PostSummary.
// Tags are filled in by a follow-up query over the page's ids.
func scanSummary(scanner interface{ Scan(dest ...any) error }) (*domain.PostSummary, error) {
	var sum domain.PostSummary
	var (
		title      stringPtrScanner
		uploadedAt string
	)
	err := scanner.Scan(
		&sum.ID,
		&sum.ThumbPath,
		&sum.MediaPath,
		&sum.BlurHash,
		&sum.Kind,
		&sum.Rating,
		&title,
		&uploadedAt,
	)
	if err != nil {
		return nil, err
	}
	sum.Title = title.value
	sum.UploadedAt, err = parseTime(uploadedAt)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// stringPtrScanner scans a nullable text column into a *string.
type stringPtrScanner struct {
	value *string
}

func (s *stringPtrScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		s.value = nil
	case string:
		s.value = &v
	case []byte:
		str := string(v)
		s.value = &str
	default:
		return fmt.Errorf("cannot scan %T into string pointer", src)
	}
	return nil
}

// candidateFilter compiles an expression plus the actor's visibility into
// a WHERE fragment over the posts table aliased as p.
func candidateFilter(expr *query.Expression, actor domain.Actor) (string, []any) {
	conditions := []string{"1=1"}
	var args []any

	switch {
	case actor.IsAdmin:
		// Admins see everything.
	case actor.Anonymous():
		conditions = append(conditions, "p.is_public = 1")
	default:
		conditions = append(conditions, "(p.is_public = 1 OR p.uploader_id = ?)")
		args = append(args, actor.ID)
	}

	if n := len(expr.Required); n > 0 {
		conditions = append(conditions, fmt.Sprintf(`p.id IN (
			SELECT pt.post_id FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE t.normalized_name IN (%s)
			GROUP BY pt.post_id
			HAVING COUNT(DISTINCT t.id) = %d)`, placeholders(n), n))
		for _, name := range expr.Required {
			args = append(args, name)
		}
	}

	if n := len(expr.Excluded); n > 0 {
		conditions = append(conditions, fmt.Sprintf(`p.id NOT IN (
			SELECT pt.post_id FROM post_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE t.normalized_name IN (%s))`, placeholders(n)))
		for _, name := range expr.Excluded {
			args = append(args, name)
		}
	}

	if n := len(expr.IncludeRatings); n > 0 {
		conditions = append(conditions, fmt.Sprintf("p.rating IN (%s)", placeholders(n)))
		for _, r := range expr.IncludeRatings {
			args = append(args, string(r))
		}
	}
	if n := len(expr.ExcludeRatings); n > 0 {
		conditions = append(conditions, fmt.Sprintf("p.rating NOT IN (%s)", placeholders(n)))
		for _, r := range expr.ExcludeRatings {
			args = append(args, string(r))
		}
	}

	return strings.Join(conditions, " AND "), args
}

// SearchPosts runs a compiled tag expression against the catalog. Results
// are ordered newest first (descending id). A page past the end returns
// empty items with the real totals; a contradictory expression matches
// nothing without error.
func (s *Store) SearchPosts(ctx context.Context, expr *query.Expression, page, pageSize int, actor domain.Actor) (*store.Page[*domain.PostSummary], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return nil, errors.Validationf("invalid page size %d", pageSize)
	}
	if expr.Unsatisfiable() {
		return store.NewPage[*domain.PostSummary](nil, page, pageSize, 0), nil
	}

	where, args := candidateFilter(expr, actor)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, errors.StoreFailure(err)
	}

	listArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM posts p WHERE `+where+`
		ORDER BY p.id DESC LIMIT ? OFFSET ?`, listArgs...)
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

	return store.NewPage(items, page, pageSize, total), nil
}

// TagsInResults returns the distinct tags carried by the posts matching
// the expression, with per-tag match counts, most frequent first.
func (s *Store) TagsInResults(ctx context.Context, expr *query.Expression, actor domain.Actor) ([]store.TagCount, error) {
	if expr.Unsatisfiable() {
		return []store.TagCount{}, nil
	}

	where, args := candidateFilter(expr, actor)

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.normalized_name, COUNT(*)
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (SELECT p.id FROM posts p WHERE `+where+`)
		GROUP BY t.id
		ORDER BY COUNT(*) DESC, t.normalized_name ASC`, args...)
	if err != nil {
		return nil, errors.StoreFailure(err)
	}
	defer rows.Close()

	var counts []store.TagCount
	for rows.Next() {
		var tc store.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, errors.StoreFailure(err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreFailure(err)
	}

	if counts == nil {
		counts = []store.TagCount{}
	}
	return counts, nil
}

// attachTags fills in the Tags slice for each summary in one query over
// the page's post ids.
func (s *Store) attachTags(ctx context.Context, items []*domain.PostSummary) error {
	if len(items) == 0 {
		return nil
	}

	args := make([]any, len(items))
	byID := make(map[int64]*domain.PostSummary, len(items))
	for i, item := range items {
		args[i] = item.ID
		byID[item.ID] = item
		item.Tags = []string{}
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT pt.post_id, t.normalized_name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (%s)
		ORDER BY t.normalized_name ASC`, placeholders(len(items))), args...)
	if err != nil {
		return errors.StoreFailure(err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		var name string
		if err := rows.Scan(&postID, &name); err != nil {
			return errors.StoreFailure(err)
		}
		if item, ok := byID[postID]; ok {
			item.Tags = append(item.Tags, name)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.StoreFailure(err)
	}
	return nil
}
