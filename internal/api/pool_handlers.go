package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pictorapp/pictor-server/internal/domain"
)

func (s *Server) registerPoolRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createPool",
		Method:        http.MethodPost,
		Path:          "/api/v1/pools",
		Summary:       "Create pool",
		Description:   "Creates a new, initially private, empty pool",
		Tags:          []string{"Pools"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePool)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPools",
		Method:      http.MethodGet,
		Path:        "/api/v1/pools",
		Summary:     "List pools",
		Description: "Returns a page of pools visible to the caller, newest first",
		Tags:        []string{"Pools"},
	}, s.handleListPools)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPool",
		Method:      http.MethodGet,
		Path:        "/api/v1/pools/{id}",
		Summary:     "Get pool",
		Description: "Returns a pool by ID",
		Tags:        []string{"Pools"},
	}, s.handleGetPool)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePool",
		Method:      http.MethodPatch,
		Path:        "/api/v1/pools/{id}",
		Summary:     "Update pool",
		Description: "Renames a pool or changes its visibility",
		Tags:        []string{"Pools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePool)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePool",
		Method:        http.MethodDelete,
		Path:          "/api/v1/pools/{id}",
		Summary:       "Delete pool",
		Description:   "Deletes a pool. The posts in it are untouched.",
		Tags:          []string{"Pools"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePool)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPoolPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/pools/{id}/posts",
		Summary:     "Get pool posts",
		Description: "Returns the posts of a pool in pool order",
		Tags:        []string{"Pools"},
	}, s.handleGetPoolPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "appendPoolPost",
		Method:      http.MethodPost,
		Path:        "/api/v1/pools/{id}/posts",
		Summary:     "Append post to pool",
		Description: "Appends a post at the end of a pool",
		Tags:        []string{"Pools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAppendPoolPost)

	huma.Register(s.api, huma.Operation{
		OperationID:   "removePoolPost",
		Method:        http.MethodDelete,
		Path:          "/api/v1/pools/{id}/posts/{postID}",
		Summary:       "Remove post from pool",
		Description:   "Removes a post from a pool and closes the gap",
		Tags:          []string{"Pools"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleRemovePoolPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "movePoolPost",
		Method:      http.MethodPut,
		Path:        "/api/v1/pools/{id}/posts/{postID}/position",
		Summary:     "Move post within pool",
		Description: "Moves a post to a new position, shifting the posts in between",
		Tags:        []string{"Pools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMovePoolPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderPool",
		Method:      http.MethodPut,
		Path:        "/api/v1/pools/{id}/order",
		Summary:     "Reorder pool",
		Description: "Replaces the pool order with an exact permutation of its current members",
		Tags:        []string{"Pools"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReorderPool)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPoolNeighbors",
		Method:      http.MethodGet,
		Path:        "/api/v1/pools/{id}/posts/{postID}/neighbors",
		Summary:     "Get pool neighbors",
		Description: "Returns the previous and next posts around a post in pool order",
		Tags:        []string{"Pools"},
	}, s.handleGetPoolNeighbors)
}

// === DTOs ===

// PoolResponse contains pool data in API responses.
type PoolResponse struct {
	ID        int64     `json:"id" doc:"Pool ID"`
	Name      string    `json:"name" doc:"Pool name"`
	OwnerID   string    `json:"owner_id" doc:"ID of the owning user"`
	IsPublic  bool      `json:"is_public" doc:"Whether the pool is publicly visible"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	PostCount int       `json:"post_count" doc:"Number of posts in the pool"`
}

// PoolOutput wraps the pool response for Huma.
type PoolOutput struct {
	Body PoolResponse
}

// CreatePoolRequest is the request body for creating a pool.
type CreatePoolRequest struct {
	Name string `json:"name" minLength:"1" maxLength:"250" doc:"Pool name"`
}

// CreatePoolInput wraps the create pool request for Huma.
type CreatePoolInput struct {
	Authorization string `header:"Authorization"`
	Body          CreatePoolRequest
}

// ListPoolsInput contains parameters for listing pools.
type ListPoolsInput struct {
	Authorization string `header:"Authorization"`
	Page          int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
}

// PoolPageResponse contains one page of pools.
type PoolPageResponse struct {
	Pools      []PoolResponse `json:"items" doc:"Pools on this page"`
	Page       int            `json:"page" doc:"Page number"`
	PageSize   int            `json:"page_size" doc:"Page size"`
	TotalItems int            `json:"total_items" doc:"Total matching pools"`
	TotalPages int            `json:"total_pages" doc:"Total pages, at least 1"`
}

// PoolPageOutput wraps the pool page response for Huma.
type PoolPageOutput struct {
	Body PoolPageResponse
}

// GetPoolInput contains parameters for getting a pool.
type GetPoolInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Pool ID"`
}

// UpdatePoolRequest is the request body for updating a pool.
type UpdatePoolRequest struct {
	Name     *string `json:"name,omitempty" minLength:"1" maxLength:"250" doc:"New pool name"`
	IsPublic *bool   `json:"is_public,omitempty" doc:"New visibility"`
}

// UpdatePoolInput wraps the update pool request for Huma.
type UpdatePoolInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Pool ID"`
	Body          UpdatePoolRequest
}

// AppendPoolPostRequest is the request body for appending a post to a pool.
type AppendPoolPostRequest struct {
	PostID int64 `json:"post_id" doc:"Post to append"`
}

// AppendPoolPostInput wraps the append request for Huma.
type AppendPoolPostInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Pool ID"`
	Body          AppendPoolPostRequest
}

// PoolPositionResponse reports the position a post landed on.
type PoolPositionResponse struct {
	PostID   int64 `json:"post_id" doc:"Post ID"`
	Position int   `json:"position" doc:"1-based position in the pool"`
}

// PoolPositionOutput wraps the position response for Huma.
type PoolPositionOutput struct {
	Body PoolPositionResponse
}

// PoolPostInput addresses one post inside one pool.
type PoolPostInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Pool ID"`
	PostID        int64  `path:"postID" doc:"Post ID"`
}

// MovePoolPostRequest is the request body for moving a post within a pool.
type MovePoolPostRequest struct {
	Position int `json:"position" minimum:"1" doc:"Target 1-based position"`
}

// MovePoolPostInput wraps the move request for Huma.
type MovePoolPostInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Pool ID"`
	PostID        int64  `path:"postID" doc:"Post ID"`
	Body          MovePoolPostRequest
}

// ReorderPoolRequest is the request body for reordering a pool.
type ReorderPoolRequest struct {
	PostIDs []int64 `json:"post_ids" doc:"Every pool member exactly once, in the new order"`
}

// ReorderPoolInput wraps the reorder request for Huma.
type ReorderPoolInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Pool ID"`
	Body          ReorderPoolRequest
}

// PoolNeighborsResponse contains the neighboring posts in pool order.
type PoolNeighborsResponse struct {
	Previous *int64 `json:"previous_post_id,omitempty" doc:"Post before this one, absent at the head"`
	Next     *int64 `json:"next_post_id,omitempty" doc:"Post after this one, absent at the tail"`
}

// PoolNeighborsOutput wraps the neighbors response for Huma.
type PoolNeighborsOutput struct {
	Body PoolNeighborsResponse
}

// === Handlers ===

func (s *Server) handleCreatePool(ctx context.Context, input *CreatePoolInput) (*PoolOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	pool, err := s.services.Pools.Create(ctx, input.Body.Name, actor)
	if err != nil {
		return nil, err
	}

	return &PoolOutput{Body: toPoolResponse(pool)}, nil
}

func (s *Server) handleListPools(ctx context.Context, input *ListPoolsInput) (*PoolPageOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	page, err := s.services.Pools.List(ctx, input.Page, actor)
	if err != nil {
		return nil, err
	}

	pools := make([]PoolResponse, len(page.Items))
	for i, p := range page.Items {
		pools[i] = toPoolResponse(p)
	}

	return &PoolPageOutput{Body: PoolPageResponse{
		Pools:      pools,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}}, nil
}

func (s *Server) handleGetPool(ctx context.Context, input *GetPoolInput) (*PoolOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	pool, err := s.services.Pools.Get(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	return &PoolOutput{Body: toPoolResponse(pool)}, nil
}

func (s *Server) handleUpdatePool(ctx context.Context, input *UpdatePoolInput) (*PoolOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	pool, err := s.services.Pools.Get(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	if input.Body.Name != nil {
		pool, err = s.services.Pools.Rename(ctx, input.ID, *input.Body.Name, actor)
		if err != nil {
			return nil, err
		}
	}
	if input.Body.IsPublic != nil {
		pool, err = s.services.Pools.SetVisibility(ctx, input.ID, *input.Body.IsPublic, actor)
		if err != nil {
			return nil, err
		}
	}

	return &PoolOutput{Body: toPoolResponse(pool)}, nil
}

func (s *Server) handleDeletePool(ctx context.Context, input *GetPoolInput) (*struct{}, error) {
	actor := s.actor(ctx, input.Authorization)

	if err := s.services.Pools.Delete(ctx, input.ID, actor); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleGetPoolPosts(ctx context.Context, input *GetPoolInput) (*SummaryListOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	summaries, err := s.services.Pools.Posts(ctx, input.ID, actor)
	if err != nil {
		return nil, err
	}

	resp := make([]PostSummaryResponse, len(summaries))
	for i, sum := range summaries {
		resp[i] = toSummaryResponse(sum)
	}

	return &SummaryListOutput{Body: SummaryListResponse{Posts: resp}}, nil
}

func (s *Server) handleAppendPoolPost(ctx context.Context, input *AppendPoolPostInput) (*PoolPositionOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	position, err := s.services.Pools.Append(ctx, input.ID, input.Body.PostID, actor)
	if err != nil {
		return nil, err
	}

	return &PoolPositionOutput{Body: PoolPositionResponse{
		PostID:   input.Body.PostID,
		Position: position,
	}}, nil
}

func (s *Server) handleRemovePoolPost(ctx context.Context, input *PoolPostInput) (*struct{}, error) {
	actor := s.actor(ctx, input.Authorization)

	if err := s.services.Pools.Remove(ctx, input.ID, input.PostID, actor); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleMovePoolPost(ctx context.Context, input *MovePoolPostInput) (*PoolPositionOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	if err := s.services.Pools.Move(ctx, input.ID, input.PostID, input.Body.Position, actor); err != nil {
		return nil, err
	}

	return &PoolPositionOutput{Body: PoolPositionResponse{
		PostID:   input.PostID,
		Position: input.Body.Position,
	}}, nil
}

func (s *Server) handleReorderPool(ctx context.Context, input *ReorderPoolInput) (*struct{}, error) {
	actor := s.actor(ctx, input.Authorization)

	if err := s.services.Pools.Reorder(ctx, input.ID, input.Body.PostIDs, actor); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleGetPoolNeighbors(ctx context.Context, input *PoolPostInput) (*PoolNeighborsOutput, error) {
	actor := s.actor(ctx, input.Authorization)

	neighbors, err := s.services.Pools.Neighbors(ctx, input.ID, input.PostID, actor)
	if err != nil {
		return nil, err
	}

	return &PoolNeighborsOutput{Body: PoolNeighborsResponse{
		Previous: neighbors.Previous,
		Next:     neighbors.Next,
	}}, nil
}

// === Helpers ===

func toPoolResponse(p *domain.Pool) PoolResponse {
	return PoolResponse{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		IsPublic:  p.IsPublic,
		CreatedAt: p.CreatedAt,
		PostCount: p.PostCount,
	}
}
