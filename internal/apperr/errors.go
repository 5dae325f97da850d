package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyText       = errors.New("empty text")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrMalformedJSON   = errors.New("malformed json")
)
