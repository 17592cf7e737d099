package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	httpserver "github.com/dmitrymomot/mailmerge/pkg/httpserver"
)

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("storage unreachable") }

	tests := []struct {
		name   string
		checks []func(context.Context) error
		code   int
		body   string
	}{
		{name: "liveness", code: http.StatusOK, body: "ALIVE"},
		{name: "ready", checks: []func(context.Context) error{ok, ok}, code: http.StatusOK, body: "READY"},
		{name: "not ready", checks: []func(context.Context) error{ok, down}, code: http.StatusServiceUnavailable, body: "NOT_READY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			httpserver.HealthCheckHandler(nil, tt.checks...)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}
}

func TestHealthCheckHandlerBoundsChecks(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	check := func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}

	rec := httptest.NewRecorder()
	httpserver.HealthCheckHandler(nil, check)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, hasDeadline)
}
