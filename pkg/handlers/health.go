package handlers

import (
	"context"
	"net/http"
	"time"

	"taskhub-backend/pkg/config"
	"taskhub-backend/pkg/utils"
)

const serviceName = "taskhub-backend"

// HealthChecker is the part of the store the health endpoint needs.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves GET /.
type HealthHandler struct {
	config *config.Config
	store  HealthChecker
}

func NewHealthHandler(cfg *config.Config, store HealthChecker) *HealthHandler {
	return &HealthHandler{config: cfg, store: store}
}

// HealthCheck reports service and store status. An unreachable store yields 503.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "healthy"
	code := http.StatusOK
	if err := h.store.HealthCheck(ctx); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
		code = http.StatusServiceUnavailable
	}

	utils.WriteJSON(w, code, utils.APIResponse{
		Success: code == http.StatusOK,
		Message: "Service is " + status,
		Data: map[string]interface{}{
			"service":     serviceName,
			"environment": h.config.Environment,
			"database":    h.databaseType(),
			"db_status":   dbStatus,
			"timestamp":   time.Now().Unix(),
			"status":      status,
		},
	})
}

func (h *HealthHandler) databaseType() string {
	if h.config.PostgresDSN != "" {
		return "postgresql"
	}
	return "sqlite"
}
