package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pictorapp/pictor-server/internal/api"
	"github.com/pictorapp/pictor-server/internal/auth"
	"github.com/pictorapp/pictor-server/internal/config"
	"github.com/pictorapp/pictor-server/internal/logger"
	"github.com/pictorapp/pictor-server/internal/media/files"
	"github.com/pictorapp/pictor-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*files.Storage](i)
	resolver := do.MustInvoke[auth.Resolver](i)

	services := &api.Services{
		Posts:  do.MustInvoke[*service.PostService](i),
		Tags:   do.MustInvoke[*service.TagService](i),
		Search: do.MustInvoke[*service.SearchService](i),
		Pools:  do.MustInvoke[*service.PoolService](i),
	}

	apiServer := api.NewServer(services, resolver, storage, log.Logger, api.Config{
		Version:        serverVersion,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		UploadPerMin:   cfg.Server.UploadPerMin,
		UploadBurst:    cfg.Server.UploadBurst,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	fmt.Printf("Pictor server running on port %s\n", cfg.Server.Port)

	return &HTTPServerHandle{Server: server}, nil
}
