package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/binder"
)

type sendRequest struct {
	PreviewID string   `json:"previewId"`
	Email     string   `json:"email"`
	Tags      []string `json:"tags"`
}

func jsonRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("binds and sanitizes", func(t *testing.T) {
		t.Parallel()

		var got sendRequest
		err := binder.JSON()(jsonRequest(`{"previewId":"  abc ","email":"jo@acme.io\u0000","tags":[" a "]}`, "application/json; charset=utf-8"), &got)
		require.NoError(t, err)
		assert.Equal(t, sendRequest{PreviewID: "abc", Email: "jo@acme.io", Tags: []string{"a"}}, got)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		target      error
	}{
		{name: "missing content type", body: `{}`, target: binder.ErrMissingContentType},
		{name: "wrong content type", body: `{}`, contentType: "text/plain", target: binder.ErrUnsupportedMediaType},
		{name: "malformed json", body: `{"email":`, contentType: "application/json", target: binder.ErrFailedToParseJSON},
		{name: "empty body", body: ``, contentType: "application/json", target: binder.ErrFailedToParseJSON},
		{name: "unknown field", body: `{"admin":true}`, contentType: "application/json", target: binder.ErrFailedToParseJSON},
		{name: "wrong type", body: `{"email":42}`, contentType: "application/json", target: binder.ErrFailedToParseJSON},
		{name: "trailing data", body: `{"email":"a"}{"email":"b"}`, contentType: "application/json", target: binder.ErrFailedToParseJSON},
		{name: "too large", body: `{"email":"` + strings.Repeat("a", binder.DefaultMaxJSONSize) + `"}`, contentType: "application/json", target: binder.ErrRequestTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got sendRequest
			err := binder.JSON()(jsonRequest(tt.body, tt.contentType), &got)
			require.ErrorIs(t, err, tt.target)
			assert.True(t, binder.IsBindingError(err))
		})
	}
}

func TestIsBindingError(t *testing.T) {
	t.Parallel()

	assert.False(t, binder.IsBindingError(nil))
	assert.False(t, binder.IsBindingError(binder.ErrBinderNotApplicable))
	assert.True(t, binder.IsBindingError(binder.ErrInvalidForm))
}
