package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

var (
	// ErrListen is returned when the listener cannot be opened or Serve fails.
	ErrListen = errors.New("httpserver: listen failed")
	// ErrShutdown is returned when in-flight requests outlive the shutdown timeout.
	ErrShutdown = errors.New("httpserver: graceful shutdown failed")
	// ErrRunning is returned by a second concurrent Run.
	ErrRunning = errors.New("httpserver: already running")
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for lifecycle messages. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStartHook runs h with the bound address once the listener is open and
// before the first request is accepted.
func WithStartHook(h func(addr string)) Option {
	return func(s *Server) {
		if h != nil {
			s.onStart = append(s.onStart, h)
		}
	}
}

// Server serves one handler until its context is cancelled.
type Server struct {
	cfg     Config
	log     *slog.Logger
	onStart []func(addr string)

	mu      sync.Mutex
	running bool
}

// New returns a Server for cfg. A zero ShutdownTimeout means 10s; other zero
// durations leave the matching http.Server timeout disabled.
func New(cfg Config, opts ...Option) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{cfg: cfg, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run listens on cfg.ListenAddr and serves h. When ctx is done it stops
// accepting connections and drains in-flight requests within the shutdown
// timeout. A clean drain returns nil.
func (s *Server) Run(ctx context.Context, h http.Handler) error {
	if h == nil {
		h = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ln, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return errors.Join(ErrListen, err)
	}
	addr := ln.Addr().String()

	srv := &http.Server{
		Handler:      h,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	for _, hook := range s.onStart {
		hook(addr)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Join(ErrListen, err)
	case <-ctx.Done():
	}

	s.log.Info("draining HTTP server", slog.String("addr", addr))

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		_ = srv.Close()
		<-serveErr
		return errors.Join(ErrShutdown, err)
	}
	<-serveErr
	return nil
}
