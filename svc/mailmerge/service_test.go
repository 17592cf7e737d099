package mailmerge_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/email"
	"github.com/dmitrymomot/mailmerge/pkg/tabular"
	"github.com/dmitrymomot/mailmerge/svc/mailmerge"
	"github.com/dmitrymomot/mailmerge/svc/preview"
)

const wantHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; background-color: #ffffff;">` +
	`<p style="color: #333333; line-height: 1.6; margin: 0 0 16px 0; font-size: 16px;">Hello.</p></div>`

type fixture struct {
	svc       *mailmerge.Service
	previews  *preview.Manager
	generator *MockGenerator
	sender    *recordingSender
}

func newFixture(t *testing.T, opts ...mailmerge.Option) *fixture {
	t.Helper()

	f := &fixture{
		previews:  preview.NewManager(preview.NewMemoryStorage()),
		generator: &MockGenerator{},
		sender:    &recordingSender{},
	}
	opts = append([]mailmerge.Option{mailmerge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	f.svc = mailmerge.NewService(f.previews, f.generator, f.sender, opts...)
	return f
}

func TestGeneratePreview(t *testing.T) {
	t.Parallel()

	t.Run("end to end", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.generator.On("GenerateBody", mock.Anything, "Write about Acme").Return("Hello.", nil).Once()
		f.generator.On("GenerateSubject", mock.Anything, "Write about Acme").Return(`"Greetings"`, nil).Once()

		rec, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV:    strings.NewReader("Company,Name\nAcme,Jo\n"),
			Prompt: "Write about {{Company}}",
		})
		require.NoError(t, err)
		f.generator.AssertExpectations(t)

		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "Greetings", rec.Subject)
		assert.Equal(t, wantHTML, rec.HTML)
		assert.Equal(t, "Write about {{Company}}", rec.Prompt)
		assert.Equal(t, []string{"Company", "Name"}, rec.Headers)
		assert.Equal(t, map[string]any{"Company": "Acme", "Name": "Jo"}, rec.SampleRow)

		stored, err := f.previews.Get(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec, stored)
	})

	t.Run("default prompt", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.generator.On("GenerateBody", mock.Anything, "Write a friendly intro about Acme").Return("```\nHi.\n\nBye.\n```", nil)
		f.generator.On("GenerateSubject", mock.Anything, "Write a friendly intro about Acme").Return("Hi", nil)

		rec, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV: strings.NewReader("Company\nAcme\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, mailmerge.DefaultPrompt, rec.Prompt)
		assert.Equal(t, 2, strings.Count(rec.HTML, "<p "))
		assert.NotContains(t, rec.HTML, "```")
	})

	t.Run("unmatched column left in prompt", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.generator.On("GenerateBody", mock.Anything, "Hi Jo from {{Company}}").Return("Body", nil)
		f.generator.On("GenerateSubject", mock.Anything, "Hi Jo from {{Company}}").Return("Subject", nil)

		_, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV:    strings.NewReader("Name\nJo\n"),
			Prompt: "Hi {{Name}} from {{Company}}",
		})
		require.NoError(t, err)
		f.generator.AssertExpectations(t)
	})

	t.Run("csv cells are trimmed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.generator.On("GenerateBody", mock.Anything, "Write about Acme Inc").Return("Body", nil).Once()
		f.generator.On("GenerateSubject", mock.Anything, "Write about Acme Inc").Return("Subject", nil).Once()

		rec, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV:    strings.NewReader(" Company , Name\n  Acme Inc ,\tJo \n"),
			Prompt: "Write about {{Company}}",
		})
		require.NoError(t, err)
		f.generator.AssertExpectations(t)
		assert.Equal(t, []string{"Company", "Name"}, rec.Headers)
		assert.Equal(t, map[string]any{"Company": "Acme Inc", "Name": "Jo"}, rec.SampleRow)
	})

	t.Run("body is escaped", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.generator.On("GenerateBody", mock.Anything, mock.Anything).Return("<script>x</script>", nil)
		f.generator.On("GenerateSubject", mock.Anything, mock.Anything).Return("S", nil)

		rec, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV: strings.NewReader("Company\nAcme\n"),
		})
		require.NoError(t, err)
		assert.NotContains(t, rec.HTML, "<script>")
		assert.Contains(t, rec.HTML, "&lt;script&gt;")
	})

	t.Run("empty csv", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV: strings.NewReader("Company,Name\n"),
		})
		require.ErrorIs(t, err, mailmerge.ErrInvalidInput)
		require.ErrorIs(t, err, tabular.ErrEmptyInput)
		assert.True(t, mailmerge.IsInputError(err))
		f.generator.AssertNotCalled(t, "GenerateBody", mock.Anything, mock.Anything)
	})

	t.Run("malformed csv", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV: strings.NewReader("Company\n\"Acme\n"),
		})
		require.ErrorIs(t, err, tabular.ErrParse)
		assert.True(t, mailmerge.IsInputError(err))
	})

	t.Run("missing csv", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{})
		require.ErrorIs(t, err, mailmerge.ErrInvalidInput)
	})

	t.Run("generation failure stores nothing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.generator.On("GenerateBody", mock.Anything, mock.Anything).Return("Body", nil)
		f.generator.On("GenerateSubject", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))

		_, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV: strings.NewReader("Company\nAcme\n"),
		})
		require.ErrorIs(t, err, mailmerge.ErrGenerationFailed)
		assert.False(t, mailmerge.IsInputError(err))

		stats, err := f.svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.Total)
	})

	t.Run("empty generated body", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.generator.On("GenerateBody", mock.Anything, mock.Anything).Return("```\n```", nil)
		f.generator.On("GenerateSubject", mock.Anything, mock.Anything).Return("Subject", nil)

		_, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV: strings.NewReader("Company\nAcme\n"),
		})
		require.ErrorIs(t, err, mailmerge.ErrGenerationFailed)
	})

	t.Run("empty generated subject", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.generator.On("GenerateBody", mock.Anything, mock.Anything).Return("Body", nil)
		f.generator.On("GenerateSubject", mock.Anything, mock.Anything).Return(`""`, nil)

		_, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV: strings.NewReader("Company\nAcme\n"),
		})
		require.ErrorIs(t, err, mailmerge.ErrGenerationFailed)
	})

	t.Run("generation timeout", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, mailmerge.WithConfig(mailmerge.Config{GenerationTimeout: 20 * time.Millisecond}))
		f.generator.On("GenerateBody", mock.Anything, mock.Anything).Return("Body", nil)
		f.generator.On("GenerateSubject", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return("", context.DeadlineExceeded)

		start := time.Now()
		_, err := f.svc.GeneratePreview(context.Background(), mailmerge.PreviewParams{
			CSV: strings.NewReader("Company\nAcme\n"),
		})
		require.ErrorIs(t, err, mailmerge.ErrGenerationFailed)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func storedPreview(t *testing.T, f *fixture) *preview.Record {
	t.Helper()

	rec, err := f.previews.Create(context.Background(), preview.CreateParams{
		Subject: "Greetings",
		HTML:    wantHTML,
		Prompt:  "Write about {{Company}}",
		Headers: []string{"Company"},
	})
	require.NoError(t, err)
	return rec
}

func TestSendTestEmail(t *testing.T) {
	t.Parallel()

	t.Run("dispatches once with stored content", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec := storedPreview(t, f)

		require.NoError(t, f.svc.SendTestEmail(context.Background(), rec.ID, " jo@acme.io "))

		sent := f.sender.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, email.SendEmailParams{
			SendTo:   "jo@acme.io",
			Subject:  "Greetings",
			BodyHTML: wantHTML,
			Tag:      mailmerge.TestEmailTag,
		}, sent[0])
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		err := f.svc.SendTestEmail(context.Background(), "missing", "jo@acme.io")
		require.ErrorIs(t, err, preview.ErrNotFound)
		assert.Empty(t, f.sender.Sent())
	})

	t.Run("expired preview", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := now
		f := &fixture{
			previews: preview.NewManager(preview.NewMemoryStorage(),
				preview.WithClock(func() time.Time { return clock })),
			generator: &MockGenerator{},
			sender:    &recordingSender{},
		}
		f.svc = mailmerge.NewService(f.previews, f.generator, f.sender,
			mailmerge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

		rec := storedPreview(t, f)
		clock = now.Add(24*time.Hour + time.Minute)

		err := f.svc.SendTestEmail(context.Background(), rec.ID, "jo@acme.io")
		require.ErrorIs(t, err, preview.ErrNotFound)
		assert.Empty(t, f.sender.Sent())
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		rec := storedPreview(t, f)

		for _, tc := range []struct{ id, addr string }{
			{"", "jo@acme.io"},
			{rec.ID, ""},
			{"  ", "  "},
			{rec.ID, "not-an-email"},
		} {
			err := f.svc.SendTestEmail(context.Background(), tc.id, tc.addr)
			require.ErrorIs(t, err, mailmerge.ErrInvalidInput, "id=%q addr=%q", tc.id, tc.addr)
		}
		assert.Empty(t, f.sender.Sent())
	})

	t.Run("provider failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.sender.err = errors.Join(email.ErrFailedToSendEmail,
			&email.ProviderError{Provider: "brevo", Code: 400, Message: "sender is not valid"})
		rec := storedPreview(t, f)

		err := f.svc.SendTestEmail(context.Background(), rec.ID, "jo@acme.io")
		require.ErrorIs(t, err, mailmerge.ErrDispatchFailed)
		assert.Contains(t, err.Error(), "sender is not valid")

		var perr *email.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 400, perr.Code)
		assert.Len(t, f.sender.Sent(), 1)
	})
}

func TestStats(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	storedPreview(t, f)
	storedPreview(t, f)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, preview.Stats{Total: 2, Recent: 2}, stats)
}

func TestNewServicePanicsWithoutCollaborators(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		mailmerge.NewService(nil, &MockGenerator{}, &recordingSender{})
	})
}
