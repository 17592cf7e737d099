// Package httpserver runs the service's HTTP listener and serves its
// liveness and readiness probes.
//
// Run blocks until its context is cancelled, then drains in-flight requests
// within Config.ShutdownTimeout:
//
//	srv := httpserver.New(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithStartHook(func(addr string) { log.Info("listening", slog.String("addr", addr)) }),
//	)
//
//	r := chi.NewRouter()
//	r.Get("/health/live", httpserver.HealthCheckHandler(log))
//	r.Get("/health/ready", httpserver.HealthCheckHandler(log, store.Ping))
//
//	err := srv.Run(ctx, r)
//
// Config.ListenAddr resolves the address from HTTP_ADDR, then a numeric PORT,
// then ":10000".
package httpserver
