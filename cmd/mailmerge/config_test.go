package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/clientip"
	"github.com/dmitrymomot/mailmerge/pkg/email"
	"github.com/dmitrymomot/mailmerge/pkg/ratelimiter"
)

func TestAppConfigValidate(t *testing.T) {
	t.Parallel()

	valid := appConfig{PreviewStorage: storageMemory, EmailProvider: providerDev, SweepInterval: time.Hour}
	require.NoError(t, valid.validate())

	badStorage := valid
	badStorage.PreviewStorage = "sqlite"
	require.ErrorContains(t, badStorage.validate(), "PREVIEW_STORAGE")

	badProvider := valid
	badProvider.EmailProvider = "smtp"
	require.ErrorContains(t, badProvider.validate(), "EMAIL_PROVIDER")

	badInterval := valid
	badInterval.SweepInterval = 0
	require.ErrorContains(t, badInterval.validate(), "PREVIEW_SWEEP_INTERVAL")
}

func TestOpenMemoryStore(t *testing.T) {
	t.Parallel()

	store, err := openPreviewStore(context.Background(), storageMemory, time.Hour, nil)
	require.NoError(t, err)
	require.NotNil(t, store.storage)
	require.NoError(t, store.ready(context.Background()))
	require.NoError(t, store.close(context.Background()))

	_, err = openPreviewStore(context.Background(), "sqlite", time.Hour, nil)
	require.Error(t, err)
}

func TestNewEmailSender(t *testing.T) {
	t.Parallel()

	cfg := email.Config{
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		BrevoAPIKey:          "brevo",
		SenderEmail:          "noreply@acme.io",
		SenderName:           "Acme",
	}

	for _, provider := range []string{providerPostmark, providerBrevo, providerDev} {
		sender, err := newEmailSender(provider, t.TempDir(), cfg, http.DefaultClient)
		require.NoError(t, err, provider)
		assert.NotNil(t, sender, provider)
	}

	_, err := newEmailSender("smtp", "", cfg, nil)
	require.Error(t, err)
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	securityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	h := corsHandler([]string{"http://localhost:3000"})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/mailmerge/send", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/mailmerge/send", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreviewLimit(t *testing.T) {
	t.Parallel()

	t.Run("off by default", func(t *testing.T) {
		t.Parallel()

		mws, release, err := previewLimit(ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute}, nil)
		require.NoError(t, err)
		defer release()
		assert.Empty(t, mws)
	})

	t.Run("enabled limits per client", func(t *testing.T) {
		t.Parallel()

		mws, release, err := previewLimit(ratelimiter.Config{
			Enabled:        true,
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Minute,
		}, nil)
		require.NoError(t, err)
		defer release()
		require.Len(t, mws, 1)

		h := clientip.Middleware()(mws.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

		call := func(ip string) int {
			req := httptest.NewRequest(http.MethodPost, "/api/mailmerge/preview", nil)
			req.Header.Set("X-Forwarded-For", ip)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		assert.Equal(t, http.StatusOK, call("203.0.113.7"))
		assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.7"))
		assert.Equal(t, http.StatusOK, call("203.0.113.8"))
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		_, _, err := previewLimit(ratelimiter.Config{Enabled: true}, nil)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	})
}
