package llm

import "errors"

var (
	ErrInvalidConfig    = errors.New("llm: invalid configuration")
	ErrGenerationFailed = errors.New("llm: completion request failed")
	ErrEmptyCompletion  = errors.New("llm: completion returned no content")
)
