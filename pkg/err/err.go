package errprocess

import (
	"context"
	"errors"
	"fmt"

	"github.com/BigT001/studyexpressuk-sub002/pkg/logger"
)

// Kind classifies a failure so the HTTP layer can pick a status code
// without inspecting storage error text.
type Kind int

const (
	// Unknown unclassified failure, treated as a storage fault
	Unknown Kind = iota
	// Validation malformed or missing caller input
	Validation
	// Unauthenticated missing, invalid or expired credential
	Unauthenticated
	// Forbidden authenticated but the role is not allowed
	Forbidden
	// NotFound the referenced record does not exist
	NotFound
	// Conflict the operation collides with current state
	Conflict
	// Storage backing store failure
	Storage
	// StorageTimeout backing store deadline exceeded
	StorageTimeout
)

// Error carries a Kind alongside the message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap expose the cause for errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// New build a classified error
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classify an underlying error. context.DeadlineExceeded always maps
// to StorageTimeout regardless of the kind the caller passed.
func Wrap(kind Kind, msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = StorageTimeout
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extract the Kind; unclassified errors come back Unknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// HTTPStatus map an error to the response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return 400
	case Unauthenticated:
		return 401
	case Forbidden:
		return 403
	case NotFound:
		return 404
	case Conflict:
		return 409
	default:
		return 500
	}
}

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}
