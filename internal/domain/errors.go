package domain

import "errors"

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrGenerationFailed = errors.New("generation failed")
	ErrStorageFailed    = errors.New("storage failed")
)
