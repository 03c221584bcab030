// Package apperr classifies storefront failures so that every boundary can
// map them to a user-visible message and an HTTP status.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation            Kind = "validation"
	NetworkFailure        Kind = "network_failure"
	PersistenceCorruption Kind = "persistence_corruption"
	PaymentFailure        Kind = "payment_failure"
	ServerRejection       Kind = "server_rejection"
	Conflict              Kind = "conflict"
)

// Error is a classified failure. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.Of(k))
// works as a kind check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Of returns a bare kind marker for errors.Is.
func Of(kind Kind) error {
	return &Error{Kind: kind}
}

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// MessageOf returns the user-facing message, or fallback for unclassified errors.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
