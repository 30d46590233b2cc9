// Package errors defines the coded errors shared by the CLI and the API.
//
// Every failure a user can act on carries a [Code]. The CLI prints the
// message and exits non-zero; the server answers with the code and the
// status from [HTTPStatus]:
//
//	return errors.New(errors.ErrCodeContainerNotFound, "container %q not found", name)
//
//	if errors.Is(err, errors.ErrCodeContainerNotFound) {
//	    ...
//	}
//
// [Wrap] keeps the cause reachable through the standard errors.Is and
// errors.As.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable, machine-readable part of an [Error].
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidInventory Code = "INVALID_INVENTORY"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeContainerNotFound Code = "CONTAINER_NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"
	ErrCodeSnapshotNotFound  Code = "SNAPSHOT_NOT_FOUND"

	// Two groups with one name under --strict.
	ErrCodeDuplicateContainer Code = "DUPLICATE_CONTAINER"

	ErrCodeInternal             Code = "INTERNAL_ERROR"
	ErrCodeUnsupported          Code = "UNSUPPORTED"
	ErrCodeUnsupportedMediaType Code = "UNSUPPORTED_MEDIA_TYPE"
)

var statusByCode = map[Code]int{
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidInventory:     http.StatusBadRequest,
	ErrCodeInvalidFormat:        http.StatusBadRequest,
	ErrCodeInvalidPath:          http.StatusBadRequest,
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeContainerNotFound:    http.StatusNotFound,
	ErrCodeFileNotFound:         http.StatusNotFound,
	ErrCodeSnapshotNotFound:     http.StatusNotFound,
	ErrCodeDuplicateContainer:   http.StatusConflict,
	ErrCodeUnsupported:          http.StatusNotImplemented,
	ErrCodeUnsupportedMediaType: http.StatusUnsupportedMediaType,
	ErrCodeInternal:             http.StatusInternalServerError,
}

// Error pairs a [Code] with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap is [New] with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// find returns the outermost *Error in the chain of err.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in the chain of err has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the code of err, or "" when it carries none.
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code, and
// err.Error() otherwise.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps the code of err to an HTTP status. Errors without a known
// code are internal.
func HTTPStatus(err error) int {
	if status, ok := statusByCode[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
