package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrInvalidForm          = errors.New("invalid form data")
	ErrMissingContentType   = errors.New("missing content type")
	ErrRequestTooLarge      = errors.New("request body too large")

	// ErrBinderNotApplicable is returned by binders that do not handle the
	// request's content type when they are configured to skip it.
	ErrBinderNotApplicable = errors.New("binder not applicable")
)

// IsBindingError reports whether err was caused by malformed client input.
func IsBindingError(err error) bool {
	return errors.Is(err, ErrUnsupportedMediaType) ||
		errors.Is(err, ErrFailedToParseJSON) ||
		errors.Is(err, ErrInvalidForm) ||
		errors.Is(err, ErrMissingContentType) ||
		errors.Is(err, ErrRequestTooLarge)
}
