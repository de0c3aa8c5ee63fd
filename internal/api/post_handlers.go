package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/store"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "uploadPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts",
		Summary:       "Upload post",
		Description:   "Uploads a media file and creates a post. Duplicate content is rejected with the existing post ID.",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleUploadPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Get post",
		Description: "Returns a post by ID",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePost",
		Method:      http.MethodPut,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Update post details",
		Description: "Replaces the editable details of a post. Omitted optional fields are cleared.",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePost",
		Method:        http.MethodDelete,
		Path:          "/api/v1/posts/{id}",
		Summary:       "Delete post",
		Description:   "Deletes a post and its stored media. Children keep existing with their parent link cleared.",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPostChildren",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/children",
		Summary:     "Get post children",
		Description: "Returns the posts whose parent is this post",
		Tags:        []string{"Posts"},
	}, s.handleGetPostChildren)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPostPools",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/pools",
		Summary:     "Get post pools",
		Description: "Returns the pools containing this post",
		Tags:        []string{"Posts"},
	}, s.handleGetPostPools)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPostSources",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/sources",
		Summary:     "Get post sources",
		Description: "Returns the source URLs attached to a post",
		Tags:        []string{"Posts"},
	}, s.handleGetPostSources)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPostSources",
		Method:      http.MethodPut,
		Path:        "/api/v1/posts/{id}/sources",
		Summary:     "Set post sources",
		Description: "Replaces the source URLs attached to a post",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPostSources)
}

// === DTOs ===

// PostResponse contains post data in API responses.
type PostResponse struct {
	ID          int64     `json:"id" doc:"Post ID"`
	Fingerprint string    `json:"fingerprint" doc:"SHA-256 of the original upload"`
	Kind        string    `json:"media_kind" doc:"Media kind: image or video"`
	Width       int       `json:"width" doc:"Pixel width"`
	Height      int       `json:"height" doc:"Pixel height"`
	Duration    *float64  `json:"duration_secs,omitempty" doc:"Video duration in seconds"`
	MediaPath   string    `json:"media_path" doc:"URL path of the original media"`
	ThumbPath   string    `json:"thumbnail_path" doc:"URL path of the thumbnail"`
	BlurHash    string    `json:"blurhash,omitempty" doc:"Compact placeholder hash"`
	Title       *string   `json:"title,omitempty" doc:"Display title"`
	Description *string   `json:"description,omitempty" doc:"Free-form description"`
	Rating      string    `json:"rating" doc:"Content rating code"`
	IsPublic    bool      `json:"is_public" doc:"Whether the post is publicly visible"`
	UploaderID  string    `json:"uploader_id" doc:"ID of the uploading user"`
	ParentID    *int64    `json:"parent_id,omitempty" doc:"Parent post ID"`
	UploadedAt  time.Time `json:"uploaded_at" doc:"Upload time"`
	TagNames    []string  `json:"tags" doc:"Tag names attached to the post"`
}

// PostOutput wraps the post response for Huma.
type PostOutput struct {
	Body PostResponse
}

// UploadFormData is the multipart payload for uploads.
type UploadFormData struct {
	File huma.FormFile `form:"file" contentType:"application/octet-stream" required:"true" doc:"Media file"`
	Tags string        `form:"tags" doc:"Whitespace-separated tag names"`
}

// UploadPostInput wraps the upload form for Huma.
type UploadPostInput struct {
	Authorization string `header:"Authorization"`
	RawBody       huma.MultipartFormFiles[UploadFormData]
}

// GetPostInput contains parameters for getting a post.
type GetPostInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Post ID"`
}

// UpdatePostRequest is the request body for updating post details.
type UpdatePostRequest struct {
	Title       *string `json:"title,omitempty" doc:"Display title"`
	Description *string `json:"description,omitempty" doc:"Free-form description"`
	Rating      string  `json:"rating" enum:"u,s,q,e" doc:"Content rating code"`
	IsPublic    bool    `json:"is_public" doc:"Whether the post is publicly visible"`
	ParentID    *int64  `json:"parent_id,omitempty" doc:"Parent post ID"`
}

// UpdatePostInput wraps the update request for Huma.
type UpdatePostInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Post ID"`
	Body          UpdatePostRequest
}

// DeletePostInput contains parameters for deleting a post.
type DeletePostInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Post ID"`
}

// PostListResponse contains a flat list of posts.
type PostListResponse struct {
	Posts []PostResponse `json:"posts" doc:"List of posts"`
}

// PostListOutput wraps the post list response for Huma.
type PostListOutput struct {
	Body PostListResponse
}

// PoolListResponse contains a flat list of pools.
type PoolListResponse struct {
	Pools []PoolResponse `json:"pools" doc:"List of pools"`
}

// PoolListOutput wraps the pool list response for Huma.
type PoolListOutput struct {
	Body PoolListResponse
}

// SourcesResponse contains the source URLs of a post.
type SourcesResponse struct {
	Sources []string `json:"sources" doc:"Source URLs"`
}

// SourcesOutput wraps the sources response for Huma.
type SourcesOutput struct {
	Body SourcesResponse
}

// SetSourcesRequest is the request body for replacing post sources.
type SetSourcesRequest struct {
	Sources []string `json:"sources" doc:"Source URLs, replaces the existing set"`
}

// SetSourcesInput wraps the set sources request for Huma.
type SetSourcesInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Post ID"`
	Body          SetSourcesRequest
}

// === Handlers ===

func (s *Server) handleUploadPost(ctx context.Context, input *UploadPostInput) (*PostOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	form := input.RawBody.Data()
	tags := strings.Fields(form.Tags)

	post, err := s.services.Posts.Upload(ctx, form.File, tags, actor)
	if err != nil {
		return nil, err
	}

	return s.postOutput(ctx, post, actor)
}

func (s *Server) handleGetPost(ctx context.Context, input *GetPostInput) (*PostOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	post, err := s.services.Posts.Get(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	return s.postOutput(ctx, post, actor)
}

func (s *Server) handleUpdatePost(ctx context.Context, input *UpdatePostInput) (*PostOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	details := &store.PostDetails{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Rating:      domain.Rating(input.Body.Rating),
		IsPublic:    input.Body.IsPublic,
		ParentID:    input.Body.ParentID,
	}

	post, err := s.services.Posts.UpdateDetails(ctx, input.ID, details, actor)
	if err != nil {
		return nil, err
	}

	return s.postOutput(ctx, post, actor)
}

func (s *Server) handleDeletePost(ctx context.Context, input *DeletePostInput) (*struct{}, error) {
	actor := s.actor(ctx, input.Authorization)

	if err := s.services.Posts.Delete(ctx, input.ID, actor); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleGetPostChildren(ctx context.Context, input *GetPostInput) (*PostListOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	children, err := s.services.Posts.Children(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	resp := make([]PostResponse, len(children))
	for i, p := range children {
		tags, err := s.services.Tags.TagsForPost(ctx, p.ID, actor)
		if err != nil {
			return nil, err
		}
		resp[i] = toPostResponse(p, tagNames(tags))
	}

	return &PostListOutput{Body: PostListResponse{Posts: resp}}, nil
}

func (s *Server) handleGetPostPools(ctx context.Context, input *GetPostInput) (*PoolListOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	pools, err := s.services.Posts.Pools(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	resp := make([]PoolResponse, len(pools))
	for i, p := range pools {
		resp[i] = toPoolResponse(p)
	}

	return &PoolListOutput{Body: PoolListResponse{Pools: resp}}, nil
}

func (s *Server) handleGetPostSources(ctx context.Context, input *GetPostInput) (*SourcesOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	sources, err := s.services.Posts.GetSources(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(sources))
	for i, src := range sources {
		urls[i] = src.URL
	}

	return &SourcesOutput{Body: SourcesResponse{Sources: urls}}, nil
}

func (s *Server) handleSetPostSources(ctx context.Context, input *SetSourcesInput) (*SourcesOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	if err := s.services.Posts.SetSources(ctx, input.ID, input.Body.Sources, actor); err != nil {
		return nil, err
	}

	sources, err := s.services.Posts.GetSources(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(sources))
	for i, src := range sources {
		urls[i] = src.URL
	}

	return &SourcesOutput{Body: SourcesResponse{Sources: urls}}, nil
}

// === Helpers ===

func (s *Server) postOutput(ctx context.Context, post *domain.Post, actor domain.Actor) (*PostOutput, error) {
	tags, err := s.services.Tags.TagsForPost(ctx, post.ID, actor)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: toPostResponse(post, tagNames(tags))}, nil
}

func toPostResponse(p *domain.Post, tags []string) PostResponse {
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:          p.ID,
		Fingerprint: p.Fingerprint,
		Kind:        string(p.Kind),
		Width:       p.Width,
		Height:      p.Height,
		Duration:    p.Duration,
		MediaPath:   p.MediaPath,
		ThumbPath:   p.ThumbPath,
		BlurHash:    p.BlurHash,
		Title:       p.Title,
		Description: p.Description,
		Rating:      string(p.Rating),
		IsPublic:    p.IsPublic,
		UploaderID:  p.UploaderID,
		ParentID:    p.ParentID,
		UploadedAt:  p.UploadedAt,
		TagNames:    tags,
	}
}

func tagNames(tags []*domain.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.NormalizedName
	}
	return names
}
