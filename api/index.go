package handler

import (
	"context"
	"net/http"
	"sync"

	"taskhub-backend/pkg/config"
	"taskhub-backend/pkg/database"
	"taskhub-backend/pkg/logger"
	"taskhub-backend/pkg/metrics"
	"taskhub-backend/pkg/server"
	"taskhub-backend/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app is the router built for one store. It is rebuilt when the pool hands
// out a different store.
type app struct {
	store  database.DatabaseInterface
	router http.Handler
}

var (
	appMu      sync.Mutex
	current    *app
	appMetrics *metrics.Metrics
)

// Handler is the serverless entry point. All endpoints are served by one chi
// router that is built on cold start and reused while warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	a, err := getApp(r.Context(), cfg)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Service unavailable")
		return
	}
	a.router.ServeHTTP(w, r)
}

func getApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg)

	store, err := database.GetDatabase(ctx, database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		Debug:       cfg.Debug,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open database")
		return nil, err
	}

	appMu.Lock()
	defer appMu.Unlock()
	if current != nil && current.store == store {
		return current, nil
	}

	router, err := build(cfg, store, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build router")
		return nil, err
	}
	current = &app{store: store, router: router}
	return current, nil
}

func build(cfg *config.Config, store database.DatabaseInterface, log zerolog.Logger) (http.Handler, error) {
	// Collectors register once per process.
	if appMetrics == nil {
		m, err := metrics.New(prometheus.NewRegistry())
		if err != nil {
			return nil, err
		}
		appMetrics = m
	}
	return server.Build(cfg, store, appMetrics, log)
}
