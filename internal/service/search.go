package service

import (
	"context"
	"log/slog"

	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/query"
	"github.com/pictorapp/pictor-server/internal/store"
)

// SearchService compiles raw tag expressions and runs them against the
// catalog with the actor's visibility applied.
type SearchService struct {
	store    store.Store
	logger   *slog.Logger
	pageSize int
}

// NewSearchService creates a new search service. pageSize is the fixed
// page size for post listings.
func NewSearchService(s store.Store, logger *slog.Logger, pageSize int) *SearchService {
	return &SearchService{
		store:    s,
		logger:   logger,
		pageSize: pageSize,
	}
}

// Search parses the raw expression and returns the requested result page,
// newest posts first. Contradictory expressions return an empty page.
func (s *SearchService) Search(ctx context.Context, raw string, page int, actor domain.Actor) (*store.Page[*domain.PostSummary], error) {
	expr := query.Parse(raw)
	return s.store.SearchPosts(ctx, &expr, page, s.pageSize, actor)
}

// TagsInResults returns the tag histogram over the full result set of the
// expression, for sidebar-style refinement.
func (s *SearchService) TagsInResults(ctx context.Context, raw string, actor domain.Actor) ([]store.TagCount, error) {
	expr := query.Parse(raw)
	return s.store.TagsInResults(ctx, &expr, actor)
}
