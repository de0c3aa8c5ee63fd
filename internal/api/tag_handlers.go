package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pictorapp/pictor-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags with usage counts, most used first",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "autocompleteTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/autocomplete",
		Summary:     "Autocomplete tags",
		Description: "Returns tags matching a name prefix",
		Tags:        []string{"Tags"},
	}, s.handleAutocompleteTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/rename",
		Summary:     "Rename tag",
		Description: "Renames a tag everywhere it is used. Renaming onto an existing tag merges the two. Admin only.",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRenameTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPostTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/tags",
		Summary:     "Get post tags",
		Description: "Returns the tags attached to a post",
		Tags:        []string{"Tags"},
	}, s.handleGetPostTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPostTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/posts/{id}/tags",
		Summary:     "Set post tags",
		Description: "Replaces the tag set of a post",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPostTags)
}

// === DTOs ===

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        int64  `json:"id" doc:"Tag ID"`
	Name      string `json:"name" doc:"Normalized tag name"`
	PostCount int    `json:"post_count" doc:"Number of posts carrying this tag"`
}

// TagListResponse contains a list of tags.
type TagListResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// TagListOutput wraps the tag list response for Huma.
type TagListOutput struct {
	Body TagListResponse
}

// AutocompleteTagsInput contains parameters for tag autocompletion.
type AutocompleteTagsInput struct {
	Prefix string `query:"prefix" doc:"Name prefix to match"`
	Limit  int    `query:"limit" default:"10" minimum:"1" maximum:"50" doc:"Maximum results"`
}

// RenameTagRequest is the request body for renaming a tag.
type RenameTagRequest struct {
	OldName string `json:"old_name" minLength:"1" doc:"Current tag name"`
	NewName string `json:"new_name" minLength:"1" doc:"New tag name"`
}

// RenameTagInput wraps the rename request for Huma.
type RenameTagInput struct {
	Authorization string `header:"Authorization"`
	Body          RenameTagRequest
}

// TagOutput wraps a single tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// PostTagsInput contains parameters for reading a post's tags.
type PostTagsInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Post ID"`
}

// SetPostTagsRequest is the request body for replacing a post's tags.
type SetPostTagsRequest struct {
	Tags []string `json:"tags" doc:"Tag names, replaces the existing set"`
}

// SetPostTagsInput wraps the set tags request for Huma.
type SetPostTagsInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Post ID"`
	Body          SetPostTagsRequest
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	tags, err := s.services.Tags.List(ctx)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: toTagResponses(tags)}}, nil
}

func (s *Server) handleAutocompleteTags(ctx context.Context, input *AutocompleteTagsInput) (*TagListOutput, error) {
	tags, err := s.services.Tags.Autocomplete(ctx, input.Prefix, input.Limit)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: toTagResponses(tags)}}, nil
}

func (s *Server) handleRenameTag(ctx context.Context, input *RenameTagInput) (*TagOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	tag, err := s.services.Tags.Rename(ctx, input.Body.OldName, input.Body.NewName, actor)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: toTagResponse(tag)}, nil
}

func (s *Server) handleGetPostTags(ctx context.Context, input *PostTagsInput) (*TagListOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	tags, err := s.services.Tags.TagsForPost(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: toTagResponses(tags)}}, nil
}

func (s *Server) handleSetPostTags(ctx context.Context, input *SetPostTagsInput) (*TagListOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	tags, err := s.services.Tags.SetTags(ctx, input.ID, input.Body.Tags, actor)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: toTagResponses(tags)}}, nil
}

// === Helpers ===

func toTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.NormalizedName,
		PostCount: t.PostCount,
	}
}

func toTagResponses(tags []*domain.Tag) []TagResponse {
	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = toTagResponse(t)
	}
	return resp
}
