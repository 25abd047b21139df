package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable machine-readable error category. Clients branch on the kind,
// not the message; CONFLICT in particular drives the resume-or-abandon prompt.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidState Kind = "INVALID_STATE"
	KindConflict     Kind = "CONFLICT"
	KindUpstream     Kind = "UPSTREAM"
	KindStorage      Kind = "STORAGE"
)

// Error carries a kind plus a human-readable message, optionally wrapping a cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given kind and message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or KindStorage for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// MessageOf returns the human-readable message of err.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// Retryable reports whether the caller may safely retry the failed operation.
// Only upstream (question source / evaluator) failures qualify: the session is
// guaranteed untouched when they occur.
func Retryable(err error) bool {
	return IsKind(err, KindUpstream)
}
