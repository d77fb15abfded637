// Package auth provides the authorization guard and the per-operation access policy.
package auth

import (
	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/models"
)

// AccessDeniedMessage is surfaced when a role check fails.
const AccessDeniedMessage = "Access Denied"

// Require checks that actor is authenticated and holds one of roles. An empty
// role list admits any authenticated actor.
func Require(actor *models.Actor, roles ...models.Role) error {
	if actor == nil || actor.UserID == "" {
		return apperr.Unauthenticated("Authentication required")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return apperr.Forbidden(AccessDeniedMessage)
}
