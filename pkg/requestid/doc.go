// Package requestid correlates log records and outbound calls with the HTTP
// request that caused them.
//
// Middleware accepts a well-formed X-Request-ID header (1 to 128 characters of
// [a-zA-Z0-9_-]) or generates a UUID, stores it in the request context and
// echoes it back. LoggerExtractor adds it to every slog record written with
// that context, and Transport forwards it on outbound HTTP requests:
//
//	log := logger.New(os.Stdout, logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware)
//
//	client := &http.Client{Transport: requestid.NewTransport(nil)}
package requestid
