// Package api provides the HTTP API server and handlers for the Pictor server.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pictorapp/pictor-server/internal/auth"
	"github.com/pictorapp/pictor-server/internal/domain"
	"github.com/pictorapp/pictor-server/internal/media/files"
)

// Config holds the server-level knobs that handlers need.
type Config struct {
	Version        string
	MaxUploadBytes int64
	UploadPerMin   int
	UploadBurst    int
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services      *Services
	resolver      auth.Resolver
	storage       *files.Storage
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
	uploadLimiter *RateLimiter
	cfg           Config
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, resolver auth.Resolver, storage *files.Storage, logger *slog.Logger, cfg Config) *Server {
	if cfg.UploadPerMin <= 0 {
		cfg.UploadPerMin = 10
	}
	if cfg.UploadBurst <= 0 {
		cfg.UploadBurst = 5
	}

	s := &Server{
		services:      services,
		resolver:      resolver,
		storage:       storage,
		router:        chi.NewRouter(),
		logger:        logger,
		uploadLimiter: NewRateLimiter(cfg.UploadPerMin, time.Minute, cfg.UploadBurst),
		cfg:           cfg,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Pictor API", cfg.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerPostRoutes()
	s.registerSearchRoutes()
	s.registerTagRoutes()
	s.registerPoolRoutes()
	s.setupMediaRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(UploadRateLimitMiddleware(s.uploadLimiter, s.logger))
	if s.cfg.MaxUploadBytes > 0 {
		s.router.Use(s.bodyLimitMiddleware)
	}
}

// bodyLimitMiddleware caps request body size before any multipart parsing.
// The ingestor enforces the same limit on the decoded upload stream; this
// stops an oversized request at the edge without buffering it.
func (s *Server) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			// Multipart framing adds overhead on top of the file bytes.
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) > 0 {
		return s.cfg.AllowedOrigins
	}
	return []string{"*"}
}

// setupMediaRoutes serves stored media and thumbnails directly from disk.
// Names are fingerprint-derived and contain no path separators; anything
// else is rejected before hitting the filesystem.
func (s *Server) setupMediaRoutes() {
	s.router.Get("/media/{name}", s.handleMediaFile)
}

func (s *Server) handleMediaFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	if !s.storage.Exists(name) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.storage.Path(name))
}

// actor resolves the Authorization header to an acting user. Absent or
// unresolvable credentials degrade to the anonymous actor; handlers decide
// what anonymous callers may do.
func (s *Server) actor(ctx context.Context, authHeader string) domain.Actor {
	if authHeader == "" {
		return domain.AnonymousActor
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return domain.AnonymousActor
	}

	actor, err := s.resolver.Resolve(ctx, parts[1])
	if err != nil {
		s.logger.Warn("Token resolution failed", "error", err)
		return domain.AnonymousActor
	}
	return actor
}

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status  string `json:"status" doc:"Overall status"`
	Version string `json:"version,omitempty" doc:"Server version"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{
		Body: HealthResponse{
			Status:  "healthy",
			Version: s.cfg.Version,
		},
	}, nil
}
