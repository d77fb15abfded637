package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"taskhub-backend/pkg/utils"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// ContentTypeJSON rejects POST requests whose body is not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				utils.WriteBadRequestResponse(w, "Content-Type header is required")
				return
			}
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				utils.WriteBadRequestResponse(w, "Content-Type must be application/json")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// MaxBodySize caps the request body at maxBytes.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// IPRateLimiter throttles requests per client IP with an in-memory store,
// which suits a single instance.
type IPRateLimiter struct {
	limiter *limiter.Limiter
}

// NewIPRateLimiter parses a rate such as "20-M" (20 per minute) or "5-S".
// Unless trustForwardHeader is set the key is the connection's remote
// address, so clients cannot pick their own bucket with X-Forwarded-For.
func NewIPRateLimiter(formatted string, trustForwardHeader bool) (*IPRateLimiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return &IPRateLimiter{
		limiter: limiter.New(memory.NewStore(), rate, limiter.WithTrustForwardHeader(trustForwardHeader)),
	}, nil
}

// Allow consumes one request for the caller's IP, sets the X-RateLimit
// headers and reports whether the request may proceed. Store failures let
// the request through.
func (l *IPRateLimiter) Allow(w http.ResponseWriter, r *http.Request) bool {
	if l == nil {
		return true
	}
	ctx, err := l.limiter.Get(r.Context(), l.limiter.GetIPKey(r))
	if err != nil {
		return true
	}

	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))
	return !ctx.Reached
}
