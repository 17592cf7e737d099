// Package mailmerge orchestrates preview generation and test sends.
//
// A preview is produced from an uploaded CSV and a prompt: the prompt's
// {{Column}} fields are resolved against the first data row, the body and
// subject are generated concurrently, and the cleaned result is rendered to
// HTML and stored through the preview Manager. A stored preview can later be
// sent once to a single address as a test email.
package mailmerge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/async"
	"github.com/dmitrymomot/mailmerge/pkg/email"
	"github.com/dmitrymomot/mailmerge/pkg/email/templates"
	"github.com/dmitrymomot/mailmerge/pkg/llm"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
	"github.com/dmitrymomot/mailmerge/pkg/metrics"
	"github.com/dmitrymomot/mailmerge/pkg/tabular"
	"github.com/dmitrymomot/mailmerge/svc/preview"
)

// TestEmailTag labels every test send at the provider.
const TestEmailTag = "mailmerge-test"

// Service ties the parser, generator, preview store and email sender together.
type Service struct {
	previews  *preview.Manager
	generator llm.Generator
	sender    email.EmailSender
	cfg       Config
	log       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConfig overrides timeouts and the default prompt.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg.withDefaults()
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService panics when a collaborator is missing; they are wired once at startup.
func NewService(previews *preview.Manager, generator llm.Generator, sender email.EmailSender, opts ...Option) *Service {
	if previews == nil || generator == nil || sender == nil {
		panic("mailmerge: preview manager, generator and sender are required")
	}

	s := &Service{
		previews:  previews,
		generator: generator,
		sender:    sender,
		cfg:       defaultConfig(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("mailmerge"))

	return s
}

// DefaultPrompt returns the prompt used when a request carries none.
func (s *Service) DefaultPrompt() string {
	return s.cfg.DefaultPrompt
}

// PreviewParams is the input to GeneratePreview.
type PreviewParams struct {
	CSV    io.Reader
	Prompt string
}

// GeneratePreview parses the CSV, resolves the prompt against its first row,
// generates the email and stores it as a new preview.
//
// Returns ErrInvalidInput (joined with the tabular error) for unusable input,
// ErrGenerationFailed when either generation call fails or times out, and
// preview errors from the store.
func (s *Service) GeneratePreview(ctx context.Context, params PreviewParams) (*preview.Record, error) {
	if params.CSV == nil {
		return nil, fmt.Errorf("%w: csv file is required", ErrInvalidInput)
	}

	table, err := tabular.ParseReader(params.CSV, tabular.WithTrimSpace())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	prompt := strings.TrimSpace(params.Prompt)
	if prompt == "" {
		prompt = s.cfg.DefaultPrompt
	}

	first := table.First()
	if missing := merge.Unmatched(prompt, first); len(missing) > 0 {
		s.log.WarnContext(ctx, "prompt references columns missing from the csv",
			slog.Any("columns", missing),
			slog.Any("headers", table.Headers),
		)
	}
	resolved := merge.Resolve(prompt, first)

	subject, body, err := s.generate(ctx, resolved)
	if err != nil {
		return nil, err
	}

	html, err := templates.Render(ctx, templates.PreviewBody(templates.Paragraphs(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: render html: %w", ErrGenerationFailed, err)
	}

	sample := make(map[string]any, len(first))
	for k, v := range first {
		sample[k] = v
	}

	rec, err := s.previews.Create(ctx, preview.CreateParams{
		Subject:   subject,
		HTML:      html,
		Prompt:    prompt,
		Headers:   table.Headers,
		SampleRow: sample,
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrementPreviewsCreated()
	s.log.InfoContext(ctx, "preview created",
		logger.PreviewID(rec.ID),
		slog.Int("rows", len(table.Rows)),
	)

	return rec, nil
}

// generate runs the body and subject calls concurrently under the generation timeout.
// Nothing is returned unless both succeed with non-empty text.
func (s *Service) generate(ctx context.Context, prompt string) (subject, body string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	bodyFuture := async.Async(ctx, prompt, s.timed("body", s.generator.GenerateBody))
	subjectFuture := async.Async(ctx, prompt, s.timed("subject", s.generator.GenerateSubject))

	results, err := async.WaitAll(bodyFuture, subjectFuture)
	if err != nil {
		s.log.ErrorContext(ctx, "content generation failed", logger.Error(err))
		return "", "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	body = CleanBody(results[0])
	subject = CleanSubject(results[1])

	switch {
	case body == "":
		return "", "", fmt.Errorf("%w: empty body", ErrGenerationFailed)
	case subject == "":
		return "", "", fmt.Errorf("%w: empty subject", ErrGenerationFailed)
	}

	return subject, body, nil
}

func (s *Service) timed(call string, fn func(context.Context, string) (string, error)) func(context.Context, string) (string, error) {
	return func(ctx context.Context, prompt string) (string, error) {
		start := time.Now()
		out, err := fn(ctx, prompt)
		metrics.RecordGeneration(call, err, time.Since(start))
		return out, err
	}
}

// SendTestEmail sends the stored preview to recipient exactly once.
//
// Returns ErrInvalidInput for a missing id or malformed address,
// preview.ErrNotFound for unknown or expired previews (nothing is sent),
// and ErrDispatchFailed carrying the provider's message otherwise.
func (s *Service) SendTestEmail(ctx context.Context, previewID, recipient string) error {
	previewID = strings.TrimSpace(previewID)
	recipient = strings.TrimSpace(recipient)

	if previewID == "" || recipient == "" {
		return fmt.Errorf("%w: preview id and email are required", ErrInvalidInput)
	}
	if !email.ValidateAddress(recipient) {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}

	rec, err := s.previews.Get(ctx, previewID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DispatchTimeout)
	defer cancel()

	err = s.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   recipient,
		Subject:  rec.Subject,
		BodyHTML: rec.HTML,
		Tag:      TestEmailTag,
	})
	metrics.IncrementTestEmail(err)
	if err != nil {
		s.log.ErrorContext(ctx, "test email dispatch failed",
			logger.PreviewID(rec.ID),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	s.log.InfoContext(ctx, "test email sent", logger.PreviewID(rec.ID))
	return nil
}

// Stats reports how many previews are live and how many were created recently.
func (s *Service) Stats(ctx context.Context) (preview.Stats, error) {
	return s.previews.Stats(ctx)
}

// IsInputError reports whether err was caused by the caller's input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, tabular.ErrEmptyInput) ||
		errors.Is(err, tabular.ErrParse)
}
