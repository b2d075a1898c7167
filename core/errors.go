package core

import "github.com/pkg/errors"

var (
	// ErrAuthFailure is returned on invalid credentials or an expired/revoked session.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrPermissionDenied is returned when a device capability or a resource is refused to the caller.
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return "validation failed"
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// RemoteOperationError reports a failed call against the storage backend.
// Msg is safe to show to the end user.
type RemoteOperationError struct {
	Msg string
	Err error
}

func NewRemoteOperationError(msg string, err error) error {
	return &RemoteOperationError{Msg: msg, Err: err}
}

func (err RemoteOperationError) Error() string {
	if err.Err == nil {
		return err.Msg
	}
	return err.Msg + ": " + err.Err.Error()
}

func (err RemoteOperationError) Unwrap() error { return err.Err }

func IsRemoteOperationError(err error) bool {
	_, ok := errors.Cause(err).(*RemoteOperationError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
