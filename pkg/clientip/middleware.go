package clientip

import "net/http"

// Middleware stores the resolved client IP in the request context.
// With no headers given, DefaultHeaders are trusted.
func Middleware(headers ...string) func(http.Handler) http.Handler {
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithContext(r.Context(), FromRequest(r, headers...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Key returns the stored client IP. It fits ratelimiter.KeyFunc.
func Key(r *http.Request) string {
	return FromContext(r.Context())
}
