package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

const (
	// DefaultTTL is how long a preview stays retrievable after creation.
	DefaultTTL = 24 * time.Hour

	// RecentWindow bounds the "recent" counter reported by Stats.
	RecentWindow = time.Hour

	maxIDAttempts = 3
)

// CreateParams holds the generated content for a new preview.
type CreateParams struct {
	Subject   string
	HTML      string
	Prompt    string
	Headers   []string
	SampleRow map[string]any
}

// Validate checks that all required content is present.
func (p CreateParams) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(p.HTML) == "" {
		missing = append(missing, "html")
	}
	if strings.TrimSpace(p.Prompt) == "" {
		missing = append(missing, "prompt")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	return nil
}

// Manager owns the preview lifecycle: create, lookup, expiry and stats.
// Storage is never touched directly by other components.
type Manager struct {
	storage Storage
	ttl     time.Duration
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager backed by storage.
// Panics if storage is nil since the manager cannot operate without it.
func NewManager(storage Storage, opts ...Option) *Manager {
	if storage == nil {
		panic("preview: storage is required")
	}

	m := &Manager{
		storage: storage,
		ttl:     DefaultTTL,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the configured record lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Create persists a new preview and returns it.
// Nothing is stored if validation fails.
func (m *Manager) Create(ctx context.Context, params CreateParams) (*Record, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sample := make(map[string]any, max(len(params.SampleRow), len(params.Headers)))
	maps.Copy(sample, params.SampleRow)
	for _, h := range params.Headers {
		if _, ok := sample[h]; !ok {
			sample[h] = ""
		}
	}

	headers := slices.Clone(params.Headers)
	if headers == nil {
		headers = []string{}
	}

	rec := &Record{
		Subject:   params.Subject,
		HTML:      params.HTML,
		Prompt:    params.Prompt,
		Headers:   headers,
		SampleRow: sample,
		// Millisecond precision survives every storage driver unchanged.
		CreatedAt: m.now().UTC().Truncate(time.Millisecond),
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		rec.ID = m.newID()

		err := m.storage.Insert(ctx, rec)
		if err == nil {
			m.logger.DebugContext(ctx, "preview created",
				logger.Component("preview"),
				logger.PreviewID(rec.ID),
			)
			return rec.Clone(), nil
		}
		if !errors.Is(err, ErrDuplicateID) {
			return nil, storageError(err)
		}

		m.logger.WarnContext(ctx, "preview id collision, regenerating",
			logger.Component("preview"),
			logger.PreviewID(rec.ID),
			slog.Int("attempt", attempt),
		)
	}

	return nil, ErrIDExhausted
}

// Get returns the live record with the given id.
// Absent and expired records both yield ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}

	rec, err := m.storage.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if rec == nil || rec.Expired(m.now(), m.ttl) {
		return nil, ErrNotFound
	}
	return rec, nil
}

// SweepExpired deletes every record whose lifetime has elapsed at now
// and returns the number removed. Calling it again removes nothing new.
func (m *Manager) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := m.storage.DeleteCreatedBefore(ctx, now.Add(-m.ttl))
	if err != nil {
		return 0, storageError(err)
	}
	return n, nil
}

// Stats counts live records and those created within RecentWindow.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	now := m.now()

	total, err := m.storage.CountCreatedAfter(ctx, now.Add(-m.ttl))
	if err != nil {
		return Stats{}, storageError(err)
	}
	recent, err := m.storage.CountCreatedAfter(ctx, now.Add(-RecentWindow))
	if err != nil {
		return Stats{}, storageError(err)
	}

	return Stats{Total: total, Recent: recent}, nil
}

// storageError keeps package sentinels intact and tags everything else as ErrStorage.
func storageError(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateID) || errors.Is(err, ErrStorage) {
		return err
	}
	return errors.Join(ErrStorage, err)
}
