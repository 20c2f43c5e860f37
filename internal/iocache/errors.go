package iocache

import "errors"

// Sentinel errors returned by the stores and by input validation.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRelation = errors.New("invalid relation")
	ErrInvalidMode     = errors.New("invalid mode")
	ErrIncompleteDraw  = errors.New("incomplete draw")
	ErrInvalidInput    = errors.New("invalid input")
)
