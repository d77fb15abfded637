package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/auth"
	"taskhub-backend/pkg/models"

	"github.com/rs/zerolog"
)

// TokenVerifier resolves a bearer token to the actor it was issued for.
type TokenVerifier interface {
	VerifyToken(token string) (*models.Actor, error)
}

// Authenticate resolves the bearer token, if any, and stores the actor in the
// request context. Requests never stop here. A token that cannot be used
// leaves the request anonymous with a rejection reason, which the handler
// reports when the operation needs an actor.
func Authenticate(verifier TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "auth").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
				next.ServeHTTP(w, r.WithContext(auth.WithRejection(r.Context(), "Invalid authorization header format")))
				return
			}

			actor, err := verifier.VerifyToken(strings.TrimSpace(tokenString))
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("token rejected")
				msg := apperr.MessageOf(err)
				if msg == "" {
					msg = "Invalid token"
				}
				next.ServeHTTP(w, r.WithContext(auth.WithRejection(r.Context(), msg)))
				return
			}

			recordActor(r.Context(), actor.UserID)
			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

// GetActor returns the authenticated actor of the request, or nil.
func GetActor(ctx context.Context) *models.Actor {
	return auth.ActorFromContext(ctx)
}
