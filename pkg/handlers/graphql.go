package handlers

import (
	"errors"
	"net/http"
	"strings"

	"taskhub-backend/pkg/auth"
	"taskhub-backend/pkg/graph"
	"taskhub-backend/pkg/middleware"
	"taskhub-backend/pkg/utils"

	"github.com/rs/zerolog"
)

// GraphQLHandler serves POST /graphql.
type GraphQLHandler struct {
	schema  *graph.Schema
	limiter *middleware.IPRateLimiter
	logger  zerolog.Logger
}

// NewGraphQLHandler creates the handler. limiter throttles the public
// operations (login, register) and may be nil.
func NewGraphQLHandler(schema *graph.Schema, limiter *middleware.IPRateLimiter, logger zerolog.Logger) *GraphQLHandler {
	return &GraphQLHandler{
		schema:  schema,
		limiter: limiter,
		logger:  logger.With().Str("component", "graphql").Logger(),
	}
}

// ServeHTTP executes one GraphQL request. Only documents whose root fields are
// all public may run without an authenticated actor; a stale token on such a
// request is ignored.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graph.Request
	if err := utils.ParseJSONBody(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteErrorResponseWithCode(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return
		}
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		utils.WriteBadRequestResponse(w, "Query is required")
		return
	}

	if graph.IsPublicRequest(req.Query, req.OperationName) {
		if !h.limiter.Allow(w, r) {
			h.logger.Warn().Str("ip", r.RemoteAddr).Msg("public operation rate limited")
			utils.WriteTooManyRequestsResponse(w, "Too many requests, please try again later")
			return
		}
	} else if auth.ActorFromContext(r.Context()) == nil {
		msg := auth.RejectionFromContext(r.Context())
		if msg == "" {
			msg = "Authentication required"
		}
		utils.WriteUnauthorizedResponse(w, msg)
		return
	}

	result := h.schema.Execute(r.Context(), req)
	if result.HasErrors() {
		h.logger.Debug().Interface("errors", result.Errors).Msg("query returned errors")
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
