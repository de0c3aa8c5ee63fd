// Package di provides dependency injection configuration for the Pictor server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pictorapp/pictor-server/internal/auth"
	"github.com/pictorapp/pictor-server/internal/config"
	"github.com/pictorapp/pictor-server/internal/di/providers"
	"github.com/pictorapp/pictor-server/internal/ingest"
	"github.com/pictorapp/pictor-server/internal/logger"
	"github.com/pictorapp/pictor-server/internal/media/files"
	"github.com/pictorapp/pictor-server/internal/media/video"
	"github.com/pictorapp/pictor-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideMediaStorage)

	// Media processing
	do.Provide(injector, providers.ProvideVideoTool)
	do.Provide(injector, providers.ProvideIngestor)

	// Auth layer
	do.Provide(injector, providers.ProvideResolver)

	// Business services
	do.Provide(injector, providers.ProvidePostService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvidePoolService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order. Providers are
// lazy, so invoking each one here surfaces construction failures at
// startup instead of on the first request.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*files.Storage](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*video.Tool](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*ingest.Ingestor](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[auth.Resolver](injector); err != nil {
		return err
	}

	// Business services
	if _, err := do.Invoke[*service.PostService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.TagService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SearchService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.PoolService](injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
