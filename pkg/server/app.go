package server

import (
	"taskhub-backend/pkg/auth"
	"taskhub-backend/pkg/config"
	"taskhub-backend/pkg/database"
	"taskhub-backend/pkg/graph"
	"taskhub-backend/pkg/metrics"
	customMiddleware "taskhub-backend/pkg/middleware"
	"taskhub-backend/pkg/service"
	"taskhub-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Build wires the service, schema and rate limiter for store and returns the
// router. m may be nil.
func Build(cfg *config.Config, store database.DatabaseInterface, m *metrics.Metrics, logger zerolog.Logger) (*chi.Mux, error) {
	policy, err := auth.ParsePolicy(cfg.AccessPolicy, cfg.TenantScopedReads)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("policy", policy.String()).Msg("access policy loaded")

	tokens := utils.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.New(service.Options{
		Store:              store,
		Hasher:             utils.NewPasswordHasher(cfg.BcryptCost),
		Tokens:             tokens,
		Policy:             policy,
		Metrics:            m,
		Logger:             logger,
		UnifiedLoginErrors: cfg.LoginUnifiedErrors,
	})
	schema, err := graph.NewSchema(svc, logger)
	if err != nil {
		return nil, err
	}

	var limiter *customMiddleware.IPRateLimiter
	if cfg.LoginRateLimit != "" {
		if limiter, err = customMiddleware.NewIPRateLimiter(cfg.LoginRateLimit, cfg.TrustProxy); err != nil {
			return nil, err
		}
	}

	return NewRouter(cfg, Deps{
		Store:   store,
		Schema:  schema,
		Tokens:  tokens,
		Metrics: m,
		Limiter: limiter,
		Logger:  logger,
	}), nil
}
