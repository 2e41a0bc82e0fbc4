package errors

import (
	"errors"
)

// Common error types
var (
	ErrForbidden        = errors.New("forbidden")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrEmptyPrediction  = errors.New("empty prediction text")
	ErrInvalidState     = errors.New("invalid approval state")
)
