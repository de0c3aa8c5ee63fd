package providers

import (
	"github.com/samber/do/v2"

	"github.com/pictorapp/pictor-server/internal/auth"
	"github.com/pictorapp/pictor-server/internal/config"
	"github.com/pictorapp/pictor-server/internal/logger"
)

// ProvideResolver provides the bearer token resolver.
func ProvideResolver(i do.Injector) (auth.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	tokens, err := auth.LoadTokensFile(cfg.Auth.TokensPath)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 {
		log.Warn("No auth tokens configured; all callers are anonymous", "path", cfg.Auth.TokensPath)
	} else {
		log.Info("Auth tokens loaded", "path", cfg.Auth.TokensPath, "count", len(tokens))
	}

	return auth.NewStaticResolver(tokens), nil
}
