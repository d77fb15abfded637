// Package server assembles the HTTP router.
package server

import (
	"fmt"
	"net/http"

	"taskhub-backend/pkg/config"
	"taskhub-backend/pkg/database"
	"taskhub-backend/pkg/graph"
	"taskhub-backend/pkg/handlers"
	"taskhub-backend/pkg/metrics"
	customMiddleware "taskhub-backend/pkg/middleware"
	"taskhub-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router serves. Metrics and Limiter may be nil.
type Deps struct {
	Store   handlers.HealthChecker
	Schema  *graph.Schema
	Tokens  customMiddleware.TokenVerifier
	Metrics *metrics.Metrics
	Limiter *customMiddleware.IPRateLimiter
	Logger  zerolog.Logger
}

// NewRouter builds the router: GET / (health), GET /metrics and POST /graphql.
func NewRouter(cfg *config.Config, deps Deps) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	if cfg.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(customMiddleware.RequestLogger(deps.Logger, deps.Metrics))
	router.Use(customMiddleware.Recovery(cfg, deps.Logger))
	router.Use(customMiddleware.CORS(cfg))
	if cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	router.Use(middleware.Compress(5))
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}

	health := handlers.NewHealthHandler(cfg, deps.Store)
	router.Get("/", health.HealthCheck)

	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, "Connection pool status", database.GetConnectionStats())
		})
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	router.Group(func(r chi.Router) {
		r.Use(customMiddleware.ContentTypeJSON)
		r.Use(customMiddleware.MaxBodySize(maxBody))
		r.Use(customMiddleware.Authenticate(deps.Tokens, deps.Logger))
		r.Method(http.MethodPost, "/graphql", handlers.NewGraphQLHandler(deps.Schema, deps.Limiter, deps.Logger))
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	return router
}
