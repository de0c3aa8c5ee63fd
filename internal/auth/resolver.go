// Package auth resolves request credentials to actors.
//
// The server does not manage accounts, passwords, or sessions. Callers
// present an opaque bearer token; a Resolver maps it to an actor identity.
// Deployments plug in their own resolver (reverse proxy headers, an
// external identity service); the built-in StaticResolver serves small
// self-hosted installs with a fixed token table.
package auth

import (
	"context"

	"github.com/pictorapp/pictor-server/internal/domain"
)

// Resolver maps a bearer token to an actor. An unknown or empty token
// resolves to the anonymous actor, never an error; only transport or
// backend failures are errors.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Actor, error)
}

// StaticResolver resolves tokens against a fixed in-memory table.
type StaticResolver struct {
	actors map[string]domain.Actor
}

// NewStaticResolver creates a resolver over a token-to-actor table.
// The map is copied; later mutation of the argument has no effect.
func NewStaticResolver(tokens map[string]domain.Actor) *StaticResolver {
	actors := make(map[string]domain.Actor, len(tokens))
	for token, actor := range tokens {
		actors[token] = actor
	}
	return &StaticResolver{actors: actors}
}

// Resolve implements Resolver.
func (r *StaticResolver) Resolve(_ context.Context, token string) (domain.Actor, error) {
	if actor, ok := r.actors[token]; ok {
		return actor, nil
	}
	return domain.AnonymousActor, nil
}
