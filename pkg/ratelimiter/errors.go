package ratelimiter

import "errors"

var (
	ErrInvalidConfig = errors.New("ratelimiter: invalid configuration")
	ErrStoreClosed   = errors.New("ratelimiter: store closed")
)
