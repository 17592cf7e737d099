package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/mailmerge/pkg/environment"
)

// Format selects the slog handler New builds.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config overrides the environment preset. Empty fields keep the preset.
type Config struct {
	Level  string `env:"LOG_LEVEL"`
	Format string `env:"LOG_FORMAT"`
}

// Validate reports an unknown level or format.
func (c Config) Validate() error {
	if c.Level != "" {
		if _, err := parseLevel(c.Level); err != nil {
			return err
		}
	}
	switch Format(strings.ToLower(c.Format)) {
	case "", FormatJSON, FormatText:
		return nil
	default:
		return fmt.Errorf("logger: unknown LOG_FORMAT %q, want %q or %q", c.Format, FormatJSON, FormatText)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("logger: unknown LOG_LEVEL %q: %w", s, err)
	}
	return l, nil
}

type options struct {
	level      slog.Level
	format     Format
	attrs      []slog.Attr
	extractors []ContextExtractor
	override   Config
}

// Option configures New.
type Option func(*options)

// WithEnvironment applies the preset for env and tags every record with
// service and env. Development logs text at debug level; every other
// environment logs JSON at info level.
func WithEnvironment(env environment.Environment, service string) Option {
	return func(o *options) {
		if env == environment.Development {
			o.level = slog.LevelDebug
			o.format = FormatText
		} else {
			o.level = slog.LevelInfo
			o.format = FormatJSON
		}
		if service != "" {
			o.attrs = append(o.attrs, slog.String("service", service))
		}
		o.attrs = append(o.attrs, slog.String("env", env.String()))
	}
}

// WithConfig overrides the preset level and format regardless of option order.
// Invalid values are ignored; check them with Config.Validate first.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.override = cfg }
}

// WithContextExtractors injects request-scoped attributes into every record.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		for _, ex := range extractors {
			if ex != nil {
				o.extractors = append(o.extractors, ex)
			}
		}
	}
}

// New builds a logger writing to w. Without options it logs JSON at info level.
func New(w io.Writer, opts ...Option) *slog.Logger {
	o := &options{level: slog.LevelInfo, format: FormatJSON}
	for _, opt := range opts {
		opt(o)
	}
	if o.override.Level != "" {
		if l, err := parseLevel(o.override.Level); err == nil {
			o.level = l
		}
	}
	if f := Format(strings.ToLower(o.override.Format)); f == FormatJSON || f == FormatText {
		o.format = f
	}

	hopts := &slog.HandlerOptions{Level: o.level}
	var h slog.Handler
	if o.format == FormatText {
		h = slog.NewTextHandler(w, hopts)
	} else {
		h = slog.NewJSONHandler(w, hopts)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}
	if len(o.extractors) > 0 {
		h = contextHandler{next: h, extractors: o.extractors}
	}
	return slog.New(h)
}
