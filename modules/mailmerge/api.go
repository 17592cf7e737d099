package mailmerge

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailmerge/handler"
	"github.com/dmitrymomot/mailmerge/pkg/binder"
	"github.com/dmitrymomot/mailmerge/pkg/tabular"
	mm "github.com/dmitrymomot/mailmerge/svc/mailmerge"
	"github.com/dmitrymomot/mailmerge/svc/preview"
)

// MaxUploadSize caps the multipart body of a preview request (10MB).
const MaxUploadSize = 10 << 20

// Service is the orchestration API the HTTP handlers call.
type Service interface {
	GeneratePreview(ctx context.Context, params mm.PreviewParams) (*preview.Record, error)
	SendTestEmail(ctx context.Context, previewID, recipient string) error
	Stats(ctx context.Context) (preview.Stats, error)
}

var (
	errNoCSVFile        = handler.NewHTTPError(http.StatusBadRequest, "no_csv_file").WithMessage("No CSV file uploaded")
	errEmptyCSV         = handler.NewHTTPError(http.StatusBadRequest, "empty_csv").WithMessage("CSV file is empty")
	errInvalidCSV       = handler.NewHTTPError(http.StatusBadRequest, "invalid_csv").WithMessage("Invalid CSV file")
	errMissingFields    = handler.NewHTTPError(http.StatusBadRequest, "missing_fields").WithMessage("Missing previewId or email")
	errInvalidEmail     = handler.NewHTTPError(http.StatusBadRequest, "invalid_email").WithMessage("Invalid email address")
	errPreviewNotFound  = handler.NewHTTPError(http.StatusNotFound, "preview_not_found").WithMessage("Preview not found")
	errGenerationFailed = handler.NewHTTPError(http.StatusInternalServerError, "generation_failed").WithMessage("Failed to generate preview")
	errDispatchFailed   = handler.NewHTTPError(http.StatusInternalServerError, "dispatch_failed").WithMessage("Failed to send test email")
	errStatsFailed      = handler.NewHTTPError(http.StatusInternalServerError, "stats_failed").WithMessage("Failed to get preview stats")
)

// API serves the preview, send and stats endpoints.
type API struct {
	svc                Service
	errorHandler       handler.ErrorHandler[handler.Context]
	previewMiddlewares chi.Middlewares
}

// APIOption configures an API.
type APIOption func(*API)

// WithPreviewMiddleware guards the preview endpoint only, e.g. with a rate limiter,
// since every call there costs two generation requests.
func WithPreviewMiddleware(mws ...func(http.Handler) http.Handler) APIOption {
	return func(a *API) {
		a.previewMiddlewares = append(a.previewMiddlewares, mws...)
	}
}

func NewAPI(svc Service, errorHandler handler.ErrorHandler[handler.Context], opts ...APIOption) *API {
	a := &API{
		svc:          svc,
		errorHandler: errorHandler,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) Handle() http.Handler {
	r := chi.NewRouter()

	r.With(a.previewMiddlewares...).Post("/preview", handler.Wrap(a.preview,
		handler.WithBinders[handler.Context, PreviewRequest](csvUpload(binder.Form(binder.WithMaxBodySize(MaxUploadSize)))),
		handler.WithErrorHandler[handler.Context, PreviewRequest](a.errorHandler),
	))

	r.Post("/send", handler.Wrap(a.send,
		handler.WithBinders[handler.Context, SendRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, SendRequest](a.errorHandler),
	))

	r.Get("/stats", handler.Wrap(a.stats,
		handler.WithErrorHandler[handler.Context, struct{}](a.errorHandler),
	))

	return r
}

// csvUpload reports a request that isn't a form upload as a missing file.
func csvUpload(form handler.Bind) handler.Bind {
	return func(r *http.Request, v any) error {
		err := form(r, v)
		if errors.Is(err, binder.ErrMissingContentType) || errors.Is(err, binder.ErrUnsupportedMediaType) {
			return errNoCSVFile.Wrap(err)
		}
		return err
	}
}

// PreviewRequest is the multipart upload for a new preview.
type PreviewRequest struct {
	Prompt string                `form:"prompt"`
	CSV    *multipart.FileHeader `file:"csv"`
}

func (a *API) preview(ctx handler.Context, req PreviewRequest) handler.Response {
	if req.CSV == nil {
		return handler.Error(errNoCSVFile)
	}

	f, err := req.CSV.Open()
	if err != nil {
		return handler.Error(errNoCSVFile.Wrap(err))
	}
	defer f.Close()

	rec, err := a.svc.GeneratePreview(ctx, mm.PreviewParams{CSV: f, Prompt: req.Prompt})
	switch {
	case err == nil:
		return handler.JSON(rec)
	case errors.Is(err, tabular.ErrEmptyInput):
		return handler.Error(errEmptyCSV.Wrap(err))
	case errors.Is(err, tabular.ErrParse):
		return handler.Error(errInvalidCSV.Wrap(err))
	case errors.Is(err, mm.ErrInvalidInput):
		return handler.Error(handler.ErrBadRequest.Wrap(err))
	default:
		return handler.Error(errGenerationFailed.Wrap(err))
	}
}

// SendRequest asks for a stored preview to be sent to one address.
type SendRequest struct {
	PreviewID string `json:"previewId"`
	Email     string `json:"email"`
}

// SendResponse acknowledges a test send.
type SendResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a *API) send(ctx handler.Context, req SendRequest) handler.Response {
	if req.PreviewID == "" || req.Email == "" {
		return handler.Error(errMissingFields)
	}

	err := a.svc.SendTestEmail(ctx, req.PreviewID, req.Email)
	switch {
	case err == nil:
		return handler.JSON(SendResponse{Success: true, Message: "Test email sent successfully"})
	case errors.Is(err, preview.ErrNotFound):
		return handler.Error(errPreviewNotFound.Wrap(err))
	case errors.Is(err, mm.ErrInvalidInput):
		return handler.Error(errInvalidEmail.Wrap(err))
	default:
		return handler.Error(errDispatchFailed.Wrap(err))
	}
}

func (a *API) stats(ctx handler.Context, _ struct{}) handler.Response {
	stats, err := a.svc.Stats(ctx)
	if err != nil {
		return handler.Error(errStatsFailed.Wrap(err))
	}
	return handler.JSON(stats)
}
