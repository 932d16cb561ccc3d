package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalid    = errors.New("invalid input")
	ErrGeneration = errors.New("generation failed")
	ErrReview     = errors.New("review failed")
)
