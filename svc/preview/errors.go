package preview

import "errors"

var (
	ErrNotFound      = errors.New("preview not found")
	ErrDuplicateID   = errors.New("preview id already exists")
	ErrInvalidRecord = errors.New("invalid preview record")
	ErrStorage       = errors.New("preview storage failure")
	ErrIDExhausted   = errors.New("could not allocate a unique preview id")
)
