package auth

import (
	"context"

	"taskhub-backend/pkg/models"
)

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the actor stored in ctx, or nil.
func ActorFromContext(ctx context.Context) *models.Actor {
	actor, _ := ctx.Value(actorKey).(*models.Actor)
	return actor
}

const rejectionKey contextKey = "token-rejection"

// WithRejection returns a copy of ctx recording why the presented credentials
// were not accepted.
func WithRejection(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, rejectionKey, reason)
}

// RejectionFromContext returns the reason recorded by WithRejection, or "".
func RejectionFromContext(ctx context.Context) string {
	reason, _ := ctx.Value(rejectionKey).(string)
	return reason
}
