package binder

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
	"unicode"
)

// mediaTypeOf returns the request's media type without parameters.
func mediaTypeOf(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return "", fmt.Errorf("%w: missing content-type header", ErrMissingContentType)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: malformed content-type %q", ErrUnsupportedMediaType, contentType)
	}
	return mediaType, nil
}

// sanitizeStringValue trims surrounding whitespace and drops control
// characters other than newline and tab.
func sanitizeStringValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.IndexFunc(s, isUnsafeControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return -1
		}
		return r
	}, s)
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// validateBoundary checks a multipart boundary against RFC 2046: 1 to 70
// characters from the bchars set, not ending in a space.
func validateBoundary(boundary string) bool {
	if len(boundary) == 0 || len(boundary) > 70 || strings.HasSuffix(boundary, " ") {
		return false
	}
	for _, r := range boundary {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("'()+_,-./:=? ", r):
		default:
			return false
		}
	}
	return true
}
