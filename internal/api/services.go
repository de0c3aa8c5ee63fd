package api

import (
	"github.com/pictorapp/pictor-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Posts  *service.PostService
	Tags   *service.TagService
	Search *service.SearchService
	Pools  *service.PoolService
}
