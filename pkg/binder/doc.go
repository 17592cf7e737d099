// Package binder binds HTTP request data to Go structs.
//
// JSON() decodes strict JSON bodies (1MB limit, unknown fields rejected) and
// Form() binds urlencoded and multipart forms, including file uploads through
// the `file:` struct tag:
//
//	type PreviewRequest struct {
//		Prompt string                `form:"prompt"`
//		CSV    *multipart.FileHeader `file:"csv"`
//	}
//
// Binders plug into handler.Wrap through handler.WithBinders. Every error wraps
// one of the package sentinels; IsBindingError reports whether an error came
// from malformed client input.
package binder
