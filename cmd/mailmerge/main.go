// Command mailmerge serves the mailmerge preview API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailmerge/handler"
	mmapi "github.com/dmitrymomot/mailmerge/modules/mailmerge"
	"github.com/dmitrymomot/mailmerge/pkg/clientip"
	"github.com/dmitrymomot/mailmerge/pkg/config"
	"github.com/dmitrymomot/mailmerge/pkg/email"
	"github.com/dmitrymomot/mailmerge/pkg/environment"
	"github.com/dmitrymomot/mailmerge/pkg/httpserver"
	"github.com/dmitrymomot/mailmerge/pkg/llm"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/metrics"
	"github.com/dmitrymomot/mailmerge/pkg/ratelimiter"
	"github.com/dmitrymomot/mailmerge/pkg/requestid"
	"github.com/dmitrymomot/mailmerge/svc/mailmerge"
	"github.com/dmitrymomot/mailmerge/svc/preview"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("mailmerge stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg    appConfig
		serverCfg httpserver.Config
		mmCfg     mailmerge.Config
		llmCfg    llm.Config
		emailCfg  email.Config
		limitCfg  ratelimiter.Config
		logCfg    logger.Config
	)
	if err := errors.Join(
		config.Load(&appCfg),
		config.Load(&serverCfg),
		config.Load(&mmCfg),
		config.Load(&llmCfg),
		config.Load(&emailCfg),
		config.Load(&limitCfg),
		config.Load(&logCfg),
	); err != nil {
		return err
	}
	if err := errors.Join(appCfg.validate(), logCfg.Validate()); err != nil {
		return err
	}

	env := environment.Parse(appCfg.AppEnv)
	log := logger.New(os.Stdout,
		logger.WithEnvironment(env, appCfg.AppName),
		logger.WithConfig(logCfg),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
	slog.SetDefault(log)

	store, err := openPreviewStore(ctx, appCfg.PreviewStorage, mmCfg.PreviewTTL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(context.WithoutCancel(ctx)); err != nil {
			log.Error("failed to close preview storage", logger.Error(err))
		}
	}()

	// Outbound calls carry the inbound request id.
	outbound := &http.Client{Transport: requestid.NewTransport(http.DefaultTransport)}

	generator, err := llm.NewOpenAI(llmCfg, llm.WithHTTPClient(outbound))
	if err != nil {
		return err
	}
	sender, err := newEmailSender(appCfg.EmailProvider, appCfg.EmailDevDir, emailCfg, outbound)
	if err != nil {
		return err
	}

	previews := preview.NewManager(store.storage,
		preview.WithTTL(mmCfg.PreviewTTL),
		preview.WithLogger(log),
	)
	svc := mailmerge.NewService(previews, generator, sender,
		mailmerge.WithConfig(mmCfg),
		mailmerge.WithLogger(log),
	)
	sweeper := preview.NewSweeper(previews,
		preview.WithSweepInterval(appCfg.SweepInterval),
		preview.WithSweepLogger(log),
		preview.WithSweepHook(metrics.AddPreviewsSwept),
	)

	previewMiddlewares, releaseLimiter, err := previewLimit(limitCfg, log)
	if err != nil {
		return err
	}
	defer releaseLimiter()

	r := chi.NewRouter()
	r.Use(
		clientip.Middleware(appCfg.TrustedIPHeaders...),
		requestid.Middleware,
		middleware.Recoverer,
		metrics.Middleware,
		environment.Middleware(env),
		securityHeaders,
		corsHandler(appCfg.CORSAllowedOrigins),
		accessLog(log),
	)

	r.Get("/health/live", httpserver.HealthCheckHandler(log))
	r.Get("/health/ready", httpserver.HealthCheckHandler(log, store.ready))
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/", mmapi.Router(mmapi.RouterOptions{
		API: mmapi.NewAPI(svc, handler.NewErrorHandler(log),
			mmapi.WithPreviewMiddleware(previewMiddlewares...),
		),
	}))

	server := httpserver.New(serverCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(addr string) {
			log.Info("mailmerge listening",
				slog.String("addr", addr),
				logger.Storage(appCfg.PreviewStorage),
				logger.Provider(appCfg.EmailProvider),
			)
		}),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx, r) })
	g.Go(func() error {
		if err := sweeper.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}
