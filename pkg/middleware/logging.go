package middleware

import (
	"context"
	"net/http"
	"time"

	"taskhub-backend/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type slotKey struct{}

var actorSlotKey slotKey

// actorSlot lets Authenticate, which runs further down the chain, report the
// caller back to RequestLogger.
type actorSlot struct {
	userID string
}

func recordActor(ctx context.Context, userID string) {
	if slot, ok := ctx.Value(actorSlotKey).(*actorSlot); ok {
		slot.userID = userID
	}
}

// RequestLogger logs one line per request with its status, latency, request
// id and caller, and records the latency in m when m is not nil.
func RequestLogger(logger zerolog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			slot := &actorSlot{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), actorSlotKey, slot)))

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveRequest(r.Method, route, status, duration.Seconds())

			event := log.Info()
			switch {
			case status >= 500:
				event = log.Error()
			case status >= 400:
				event = log.Warn()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", duration).
				Int("bytes", ww.BytesWritten()).
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("ip", r.RemoteAddr).
				Str("user", slot.userID).
				Msg("request")
		})
	}
}
