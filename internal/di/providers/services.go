package providers

import (
	"github.com/samber/do/v2"

	"github.com/pictorapp/pictor-server/internal/config"
	"github.com/pictorapp/pictor-server/internal/ingest"
	"github.com/pictorapp/pictor-server/internal/logger"
	"github.com/pictorapp/pictor-server/internal/media/files"
	"github.com/pictorapp/pictor-server/internal/service"
)

// ProvidePostService provides the post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storage := do.MustInvoke[*files.Storage](i)
	ingestor := do.MustInvoke[*ingest.Ingestor](i)

	return service.NewPostService(storeHandle.Store, storage, ingestor, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewSearchService(storeHandle.Store, log.Logger, cfg.Pagination.PostPageSize), nil
}

// ProvidePoolService provides the pool service.
func ProvidePoolService(i do.Injector) (*service.PoolService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewPoolService(storeHandle.Store, log.Logger, cfg.Pagination.PoolPageSize), nil
}
