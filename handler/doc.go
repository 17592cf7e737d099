// Package handler provides typed HTTP handlers for JSON APIs.
//
// A HandlerFunc receives a Context and a request value populated by binders
// and returns a Response. Wrap turns it into an http.HandlerFunc:
//
//	type SendRequest struct {
//		PreviewID string `json:"previewId"`
//		Email     string `json:"email"`
//	}
//
//	func send(ctx handler.Context, req SendRequest) handler.Response {
//		if req.PreviewID == "" {
//			return handler.Error(handler.ErrBadRequest.WithMessage("Missing previewId"))
//		}
//		return handler.JSON(map[string]any{"success": true})
//	}
//
//	r.Post("/send", handler.Wrap(send,
//		handler.WithBinders[handler.Context, SendRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, SendRequest](handler.NewErrorHandler(log)),
//	))
//
// Errors returned by binders, handlers (via Error) or rendering go to the
// ErrorHandler. NewErrorHandler maps HTTPError values to their status code and
// renders {"error": "...", "code": "..."}; any other error becomes a 500 with a
// generic message.
package handler
