// Package logger builds the service's *slog.Logger and names the attributes
// the rest of the code logs with.
//
// New picks a preset from the deployment environment, lets LOG_LEVEL and
// LOG_FORMAT override it, and pulls request-scoped values such as the request
// id and client IP out of the context on every record:
//
//	log := logger.New(os.Stdout,
//	    logger.WithEnvironment(env, "mailmerge"),
//	    logger.WithConfig(logCfg),
//	    logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "preview created", logger.PreviewID(rec.ID))
//
// Error, PreviewID and RequestID return an empty attribute for a zero value,
// which slog drops, so callers need no nil checks.
package logger
