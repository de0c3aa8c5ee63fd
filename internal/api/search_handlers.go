package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pictorapp/pictor-server/internal/domain"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "Search posts",
		Description: "Returns a page of posts matching a tag query, newest first. Terms are ANDed; a leading '-' excludes a tag; 'rating:' terms filter by rating.",
		Tags:        []string{"Search"},
	}, s.handleSearchPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchRelatedTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/related-tags",
		Summary:     "Related tags",
		Description: "Returns the tags occurring in the full result set of a query, with counts",
		Tags:        []string{"Search"},
	}, s.handleSearchRelatedTags)
}

// === DTOs ===

// PostSummaryResponse is the listing projection of a post.
type PostSummaryResponse struct {
	ID         int64     `json:"id" doc:"Post ID"`
	ThumbPath  string    `json:"thumbnail_path" doc:"URL path of the thumbnail"`
	MediaPath  string    `json:"media_path" doc:"URL path of the original media"`
	BlurHash   string    `json:"blurhash,omitempty" doc:"Compact placeholder hash"`
	Kind       string    `json:"media_kind" doc:"Media kind: image or video"`
	Rating     string    `json:"rating" doc:"Content rating code"`
	Title      *string   `json:"title,omitempty" doc:"Display title"`
	UploadedAt time.Time `json:"uploaded_at" doc:"Upload time"`
	TagNames   []string  `json:"tags" doc:"Tag names attached to the post"`
}

// SummaryListResponse contains an ordered, unpaginated list of summaries.
type SummaryListResponse struct {
	Posts []PostSummaryResponse `json:"posts" doc:"Posts in order"`
}

// SummaryListOutput wraps the summary list for Huma.
type SummaryListOutput struct {
	Body SummaryListResponse
}

// SearchPostsInput contains the search query parameters.
type SearchPostsInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Tag query, e.g. 'forest -night rating:s'"`
	Page          int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
}

// SearchPageResponse contains one page of search results.
type SearchPageResponse struct {
	Posts      []PostSummaryResponse `json:"items" doc:"Posts on this page"`
	Page       int                   `json:"page" doc:"Page number"`
	PageSize   int                   `json:"page_size" doc:"Page size"`
	TotalItems int                   `json:"total_items" doc:"Total matching posts"`
	TotalPages int                   `json:"total_pages" doc:"Total pages, at least 1"`
}

// SearchPageOutput wraps the search page for Huma.
type SearchPageOutput struct {
	Body SearchPageResponse
}

// RelatedTagsInput contains the related-tags query parameters.
type RelatedTagsInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Tag query to aggregate over"`
}

// TagCountResponse is one tag with its occurrence count.
type TagCountResponse struct {
	Name  string `json:"name" doc:"Normalized tag name"`
	Count int    `json:"count" doc:"Posts in the result set carrying this tag"`
}

// RelatedTagsResponse contains tag counts ordered by frequency.
type RelatedTagsResponse struct {
	Tags []TagCountResponse `json:"tags" doc:"Tags ordered by count, then name"`
}

// RelatedTagsOutput wraps the related tags response for Huma.
type RelatedTagsOutput struct {
	Body RelatedTagsResponse
}

// === Handlers ===

func (s *Server) handleSearchPosts(ctx context.Context, input *SearchPostsInput) (*SearchPageOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	page, err := s.services.Search.Search(ctx, input.Query, input.Page, actor)
	if err != nil {
		return nil, err
	}

	posts := make([]PostSummaryResponse, len(page.Items))
	for i, sum := range page.Items {
		posts[i] = toSummaryResponse(sum)
	}

	return &SearchPageOutput{Body: SearchPageResponse{
		Posts:      posts,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}}, nil
}

func (s *Server) handleSearchRelatedTags(ctx context.Context, input *RelatedTagsInput) (*RelatedTagsOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	counts, err := s.services.Search.TagsInResults(ctx, input.Query, actor)
	if err != nil {
		return nil, err
	}

	tags := make([]TagCountResponse, len(counts))
	for i, tc := range counts {
		tags[i] = TagCountResponse{Name: tc.Name, Count: tc.Count}
	}

	return &RelatedTagsOutput{Body: RelatedTagsResponse{Tags: tags}}, nil
}

// === Helpers ===

func toSummaryResponse(p *domain.PostSummary) PostSummaryResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummaryResponse{
		ID:         p.ID,
		ThumbPath:  p.ThumbPath,
		MediaPath:  p.MediaPath,
		BlurHash:   p.BlurHash,
		Kind:       string(p.Kind),
		Rating:     string(p.Rating),
		Title:      p.Title,
		UploadedAt: p.UploadedAt,
		TagNames:   tags,
	}
}
