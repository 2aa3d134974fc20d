package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"orb-arena/internal/game"
)

// RouterConfig carries the router's dependencies.
type RouterConfig struct {
	Engine *game.Engine

	// RateLimiter is optional; nil leaves the router without rate limiting.
	RateLimiter *IPRateLimiter

	// CORSOrigins overrides the allowed origins; nil allows any origin,
	// matching the public-arena deployment model.
	CORSOrigins []string

	// DisableLogging drops the request logger (useful in tests).
	DisableLogging bool
}

// NewRouter constructs the HTTP router. It is pure: no goroutines, no
// listeners. Safe to hand straight to httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	r.Get("/healthz", healthHandler(cfg.Engine))
	r.Get("/api/state", stateHandler(cfg.Engine))

	return r
}
