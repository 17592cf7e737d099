package mailmerge

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrGenerationFailed = errors.New("content generation failed")
	ErrDispatchFailed   = errors.New("test email dispatch failed")
)
