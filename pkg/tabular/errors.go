package tabular

import "errors"

var (
	ErrEmptyInput = errors.New("tabular: no data rows")
	ErrParse      = errors.New("tabular: malformed input")
)
