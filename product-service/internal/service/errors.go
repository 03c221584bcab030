package service

import "errors"

var (
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidPrice    = errors.New("price must be a non-negative number")
)

// ValidationError carries per-field messages for a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid product submission"
}
