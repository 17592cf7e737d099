// Package clientip resolves the originating client address of a request
// served behind reverse proxies.
//
// Only the headers passed to the middleware are trusted, in priority order.
// For X-Forwarded-For the first valid entry wins. RemoteAddr is the fallback.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders are trusted when no headers are configured.
var DefaultHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// FromRequest returns the normalized client IP, checking headers in order
// before falling back to RemoteAddr. It returns "" when nothing parses.
func FromRequest(r *http.Request, headers ...string) string {
	for _, name := range headers {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		for candidate := range strings.SplitSeq(value, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
