package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailmerge/pkg/binder"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

const genericErrorMessage = "Internal server error"

type errorInfo struct {
	status  int
	key     string
	message string
}

func classifyError(err error) errorInfo {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		info := errorInfo{status: httpErr.Code, key: httpErr.Key, message: httpErr.ClientMessage()}
		if httpErr.Code >= http.StatusInternalServerError && httpErr.Message == "" {
			info.message = genericErrorMessage
		}
		return info
	}
	switch {
	case errors.Is(err, binder.ErrRequestTooLarge):
		return errorInfo{status: http.StatusRequestEntityTooLarge, key: ErrRequestEntityTooLarge.Key, message: "Request body too large"}
	case binder.IsBindingError(err):
		return errorInfo{status: http.StatusBadRequest, key: ErrBadRequest.Key, message: "Invalid request"}
	}
	return errorInfo{
		status:  http.StatusInternalServerError,
		key:     ErrInternalServerError.Key,
		message: genericErrorMessage,
	}
}

func logLevel(status int) slog.Level {
	if status < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// NewErrorHandler returns an ErrorHandler rendering {"error","code"} JSON.
// Client errors are logged at WARN and server errors at ERROR. Only an
// HTTPError's client message reaches the response; causes stay in the log.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := classifyError(err)

		log.LogAttrs(r.Context(), logLevel(info.status), "request error",
			logger.Error(err),
			slog.Int("status_code", info.status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		resp := JSON(ErrorBody{Error: info.message, Code: info.key}, WithJSONStatus(info.status))
		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.Error("failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
