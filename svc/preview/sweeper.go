package preview

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

// DefaultSweepInterval keeps staleness well below DefaultTTL.
const DefaultSweepInterval = time.Hour

// Sweeper periodically removes expired previews.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger
	onSweep  func(removed int64, err error)
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepInterval sets how often the sweep runs. Non-positive values are ignored.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweepLogger sets the sweeper logger.
func WithSweepLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSweepHook registers a callback invoked after every sweep.
func WithSweepHook(fn func(removed int64, err error)) SweeperOption {
	return func(s *Sweeper) {
		s.onSweep = fn
	}
}

// NewSweeper creates a Sweeper for the manager's records.
func NewSweeper(m *Manager, opts ...SweeperOption) *Sweeper {
	if m == nil {
		panic("preview: manager is required")
	}

	s := &Sweeper{
		manager:  m,
		interval: DefaultSweepInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps once immediately and then on every tick until ctx is done.
// Sweep failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "preview sweeper started",
		logger.Component("preview.sweeper"),
		slog.Duration("interval", s.interval),
	)

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("preview sweeper shutting down", logger.Component("preview.sweeper"))
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	removed, err := s.manager.SweepExpired(ctx, s.manager.Now())
	if s.onSweep != nil {
		s.onSweep(removed, err)
	}

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.ErrorContext(ctx, "preview sweep failed",
			logger.Component("preview.sweeper"),
			logger.Error(err),
		)
		return
	}

	if removed > 0 {
		s.logger.InfoContext(ctx, "expired previews removed",
			logger.Component("preview.sweeper"),
			logger.Count(removed),
			logger.Duration(time.Since(start)),
		)
	}
}
