// Package apperror defines the client-facing failure taxonomy. A request
// failure is either an application failure carrying its own HTTP status and
// message, or an unclassified failure that surfaces as a 500.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags the variant of a Failure.
type Kind int

const (
	// KindUnclassified is any failure that does not carry an explicit status.
	KindUnclassified Kind = iota
	// KindApplication is an expected, user-facing failure raised by handlers.
	KindApplication
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	default:
		return "unclassified"
	}
}

// Error is an application failure: a status code in [400, 599] and a message
// safe to show to clients.
type Error struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// New creates an application failure. Codes outside [400, 599] are replaced
// with 500.
func New(code int, message string) *Error {
	if code < http.StatusBadRequest || code > 599 {
		code = http.StatusInternalServerError
	}
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code int, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// BadRequest returns a 400 application failure.
func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

// NotFound returns a 404 application failure.
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

// Conflict returns a 409 application failure.
func Conflict(message string) *Error { return New(http.StatusConflict, message) }

// PayloadTooLarge returns a 413 application failure.
func PayloadTooLarge(message string) *Error { return New(http.StatusRequestEntityTooLarge, message) }

// UnsupportedMediaType returns a 415 application failure.
func UnsupportedMediaType(message string) *Error {
	return New(http.StatusUnsupportedMediaType, message)
}

// Unavailable returns a 503 application failure.
func Unavailable(message string) *Error { return New(http.StatusServiceUnavailable, message) }

// Failure is the classified view of an arbitrary error.
type Failure struct {
	Kind    Kind
	Code    int
	Message string
	// Err is the error that was classified.
	Err error
}

// Classify resolves err into one of the two failure variants. An *Error
// anywhere in the wrap chain makes it an application failure; the outermost
// one wins. A typed-nil *Error is unclassified.
func Classify(err error) Failure {
	if err == nil {
		return Failure{
			Kind:    KindUnclassified,
			Code:    http.StatusInternalServerError,
			Message: "unknown error",
		}
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr == nil {
			return Failure{
				Kind:    KindUnclassified,
				Code:    http.StatusInternalServerError,
				Message: "unknown error",
				Err:     err,
			}
		}
		return Failure{
			Kind:    KindApplication,
			Code:    New(appErr.Code, "").Code,
			Message: appErr.Message,
			Err:     err,
		}
	}

	return Failure{
		Kind:    KindUnclassified,
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
		Err:     err,
	}
}

// FromPanic converts a recovered panic value into an error.
func FromPanic(v any) error {
	switch p := v.(type) {
	case nil:
		return nil
	case error:
		return p
	default:
		return fmt.Errorf("%v", p)
	}
}
