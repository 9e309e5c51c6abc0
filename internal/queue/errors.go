package queue

import (
	"errors"
	"fmt"
)

// Kind classifies adapter failures.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindAllocation    Kind = "allocation"
	KindBackendOpen   Kind = "backend_open"
	KindBackendSchema Kind = "backend_schema"
	KindStatement     Kind = "statement"
	KindCallback      Kind = "callback"
)

// ErrorClassifier allows errors to declare their classification. Error
// implements it so callers outside this package can branch on kinds without
// importing concrete types.
type ErrorClassifier interface {
	ErrorKind() string
}

// Error is returned by every fallible adapter operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("libsqlite3 %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("libsqlite3 %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind reports the failure classification.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// KindOf returns the classification of err, or "" when err did not come from
// this package.
func KindOf(err error) Kind {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return Kind(classifier.ErrorKind())
	}
	return ""
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func configError(op, format string, args ...any) *Error {
	return newError(KindConfiguration, op, fmt.Errorf(format, args...))
}
