// Package errs defines the coded errors shared by the services and the HTTP layer.
package errs

import (
	"errors"
	"net/http"
)

// Code is an application error code.
type Code string

const (
	InvalidArgument Code = "invalid_argument"
	NotFound        Code = "not_found"
	Unavailable     Code = "unavailable"
	Internal        Code = "internal"
)

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a coded error with message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error with message and cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, Err: cause}
}

// Invalid is shorthand for a client input error.
func Invalid(message string) error {
	return New(InvalidArgument, message)
}

// CodeOf returns the error code, defaulting to internal.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return Internal
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns a user-facing error message.
// Uncoded errors come from the store or the runtime, so their text is replaced
// with "internal error" to keep SQL, DSNs and file paths out of responses.
func MessageOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" && coded.Code != Internal {
		return coded.Message
	}
	return "internal error"
}

// HTTPStatus maps error code to HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON error envelope: {"error": {"message": "..."}}.
type Body struct {
	Error BodyMessage `json:"error"`
}

// BodyMessage is the inner object of Body.
type BodyMessage struct {
	Message string `json:"message"`
}

// BodyOf builds the response envelope for err.
func BodyOf(err error) Body {
	return Body{Error: BodyMessage{Message: MessageOf(err)}}
}
