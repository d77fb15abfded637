package middleware

import (
	"net/http"

	"taskhub-backend/pkg/config"

	"github.com/go-chi/cors"
)

// CORS builds the CORS middleware from the configured origins. A wildcard
// origin disables credentials, as browsers require.
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			"X-Request-Id",
		},
		ExposedHeaders: []string{
			"X-Request-Id",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}

	if len(cfg.AllowedOrigins) == 0 || contains(cfg.AllowedOrigins, "*") {
		corsOptions.AllowedOrigins = []string{"*"}
		corsOptions.AllowCredentials = false
	}

	return cors.Handler(corsOptions)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
