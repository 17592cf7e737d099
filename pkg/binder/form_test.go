package binder_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/binder"
)

type uploadRequest struct {
	Prompt  string                  `form:"prompt"`
	Limit   *int                    `form:"limit"`
	Flags   []string                `form:"flags"`
	CSV     *multipart.FileHeader   `file:"csv"`
	Extras  []*multipart.FileHeader `file:"extra"`
	Ignored string                  `form:"-"`
}

type part struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			w, err := mw.CreateFormFile(p.field, p.filename)
			require.NoError(t, err)
			_, err = io.WriteString(w, p.content)
			require.NoError(t, err)
			continue
		}
		require.NoError(t, mw.WriteField(p.field, p.content))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFormMultipart(t *testing.T) {
	t.Parallel()

	req := multipartRequest(t,
		part{field: "prompt", content: "Write about {{Company}}"},
		part{field: "limit", content: "3"},
		part{field: "flags", content: "a,b"},
		part{field: "Ignored", content: "x"},
		part{field: "csv", filename: "../../etc/contacts.csv", content: "Company\nAcme\n"},
		part{field: "extra", filename: "one.txt", content: "1"},
		part{field: "extra", filename: "two.txt", content: "2"},
	)

	var got uploadRequest
	require.NoError(t, binder.Form()(req, &got))

	assert.Equal(t, "Write about {{Company}}", got.Prompt)
	require.NotNil(t, got.Limit)
	assert.Equal(t, 3, *got.Limit)
	assert.Equal(t, []string{"a", "b"}, got.Flags)
	assert.Empty(t, got.Ignored)

	require.NotNil(t, got.CSV)
	assert.Equal(t, "contacts.csv", got.CSV.Filename)
	f, err := got.CSV.Open()
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "Company\nAcme\n", string(data))

	require.Len(t, got.Extras, 2)
}

func TestFormMissingFileLeavesNil(t *testing.T) {
	t.Parallel()

	var got uploadRequest
	require.NoError(t, binder.Form()(multipartRequest(t, part{field: "prompt", content: "hi"}), &got))
	assert.Nil(t, got.CSV)
}

func TestFormURLEncoded(t *testing.T) {
	t.Parallel()

	body := url.Values{"prompt": {"hello"}, "limit": {"7"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var got uploadRequest
	require.NoError(t, binder.Form()(req, &got))
	assert.Equal(t, "hello", got.Prompt)
	require.NotNil(t, got.Limit)
	assert.Equal(t, 7, *got.Limit)
}

func TestFormErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing content type", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
		var got uploadRequest
		require.ErrorIs(t, binder.Form()(req, &got), binder.ErrMissingContentType)
	})

	t.Run("json content type", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		var got uploadRequest
		require.ErrorIs(t, binder.Form()(req, &got), binder.ErrUnsupportedMediaType)
	})

	t.Run("missing boundary", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
		req.Header.Set("Content-Type", "multipart/form-data")
		var got uploadRequest
		require.ErrorIs(t, binder.Form()(req, &got), binder.ErrInvalidForm)
	})

	t.Run("bad value", func(t *testing.T) {
		t.Parallel()

		var got uploadRequest
		err := binder.Form()(multipartRequest(t, part{field: "limit", content: "many"}), &got)
		require.ErrorIs(t, err, binder.ErrInvalidForm)
		assert.Contains(t, err.Error(), "Limit")
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()

		req := multipartRequest(t, part{field: "csv", filename: "big.csv", content: strings.Repeat("a", 4096)})
		var got uploadRequest
		err := binder.Form(binder.WithMaxBodySize(1024))(req, &got)
		require.ErrorIs(t, err, binder.ErrRequestTooLarge)
	})

	t.Run("non pointer target", func(t *testing.T) {
		t.Parallel()

		var got uploadRequest
		require.ErrorIs(t, binder.Form()(multipartRequest(t), got), binder.ErrInvalidForm)
	})
}
