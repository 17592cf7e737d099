package ratelimiter

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
)

// KeyFunc identifies the caller. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

type middlewareConfig struct {
	denied http.Handler
	logger *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithDeniedHandler replaces the default 429 JSON response.
func WithDeniedHandler(h http.Handler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.denied = h
		}
	}
}

// WithLogger logs store failures. Defaults to slog.Default().
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSONError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var defaultDenied = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, http.StatusTooManyRequests, errorBody{Error: "Too many requests", Code: "too_many_requests"})
})

// Middleware limits requests per key and sets the X-RateLimit-* headers.
// Denied requests get Retry-After and a 429.
func Middleware(limiter Limiter, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{denied: defaultDenied, logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				cfg.logger.ErrorContext(r.Context(), "rate limiter unavailable",
					slog.Any("error", err),
					slog.String("component", "ratelimiter"),
				)
				writeJSONError(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Code: "internal_server_error"})
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				// Rounded up so clients never retry a moment too early.
				secs := int(math.Ceil(result.RetryAfter().Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				cfg.denied.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
