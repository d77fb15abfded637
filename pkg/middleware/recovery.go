package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"taskhub-backend/pkg/config"
	"taskhub-backend/pkg/utils"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Recovery turns a panic into a 500 envelope and logs the stack. The panic
// value is only shown to callers in development.
func Recovery(cfg *config.Config, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error().
					Str("panic", fmt.Sprint(rec)).
					Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("recovered from panic")

				msg := "Internal server error occurred"
				if cfg.IsDevelopment() {
					msg = fmt.Sprintf("Internal server error: %v", rec)
				}
				utils.WriteInternalServerErrorResponse(w, msg)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
