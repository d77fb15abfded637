package database

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// idleTimeout is how long a cached connection may sit unused before it is
// reopened.
const idleTimeout = 30 * time.Minute

// DatabasePool caches one store across invocations of a long-lived process
// or a warm serverless instance.
type DatabasePool struct {
	instance DatabaseInterface
	config   DatabaseConfig
	mu       sync.RWMutex
	lastUsed time.Time
}

var (
	globalPool *DatabasePool
	poolMutex  sync.Mutex
)

// GetDatabase returns the cached store, opening a new one when none exists,
// the configuration changed, the connection went idle, or it fails a health
// check.
func GetDatabase(ctx context.Context, config DatabaseConfig, logger zerolog.Logger) (DatabaseInterface, error) {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool != nil && !shouldRecreateConnection(ctx, globalPool, config, logger) {
		globalPool.mu.Lock()
		globalPool.lastUsed = time.Now()
		globalPool.mu.Unlock()
		return globalPool.instance, nil
	}

	if globalPool != nil && globalPool.instance != nil {
		globalPool.instance.Close()
	}
	globalPool = nil

	logger.Debug().Msg("creating database connection pool")
	instance, err := NewDatabase(ctx, config, logger)
	if err != nil {
		return nil, err
	}
	globalPool = &DatabasePool{
		instance: instance,
		config:   config,
		lastUsed: time.Now(),
	}
	return instance, nil
}

func shouldRecreateConnection(ctx context.Context, pool *DatabasePool, config DatabaseConfig, logger zerolog.Logger) bool {
	if pool.instance == nil {
		return true
	}
	if pool.config != config {
		logger.Info().Msg("database configuration changed, recreating connection")
		return true
	}

	pool.mu.RLock()
	expired := time.Since(pool.lastUsed) > idleTimeout
	pool.mu.RUnlock()
	if expired {
		logger.Info().Msg("database connection expired, recreating")
		return true
	}

	if err := pool.instance.HealthCheck(ctx); err != nil {
		logger.Warn().Err(err).Msg("database health check failed, recreating")
		return true
	}
	return false
}

// ClosePool closes and forgets the cached store.
func ClosePool() error {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return nil
	}
	err := globalPool.instance.Close()
	globalPool = nil
	return err
}

// ConnectionStats describes the cached store for diagnostics.
type ConnectionStats struct {
	Status   string `json:"status"`
	LastUsed string `json:"last_used,omitempty"`
	Backend  string `json:"backend,omitempty"`
}

// GetConnectionStats reports on the cached store.
func GetConnectionStats() ConnectionStats {
	poolMutex.Lock()
	defer poolMutex.Unlock()

	if globalPool == nil {
		return ConnectionStats{Status: "no_connection"}
	}

	globalPool.mu.RLock()
	lastUsed := globalPool.lastUsed
	globalPool.mu.RUnlock()

	backend := "sqlite"
	if globalPool.config.PostgresDSN != "" {
		backend = "postgres"
	}
	return ConnectionStats{
		Status:   "connected",
		LastUsed: lastUsed.Format(time.RFC3339),
		Backend:  backend,
	}
}
