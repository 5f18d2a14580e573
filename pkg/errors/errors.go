// Package errors defines the sentinel outcomes shared by the query engine,
// the HTTP handlers and the command line, and maps them to HTTP statuses and
// process exit codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("no match")
	ErrEmptyQuery   = errors.New("empty query")
	ErrIngestionIO  = errors.New("document could not be read")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("dependency unavailable")
)

// AppError attaches a user-facing message to a sentinel. Its status is
// derived from the sentinel when the error is built.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return e.Err.Error() + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, StatusCode: statusOf(sentinel)}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return New(sentinel, fmt.Sprintf(format, args...))
}

// IsNoResult reports whether err is one of the query-phase outcomes that
// degrade to "no results" rather than a failure.
func IsNoResult(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyQuery)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return statusOf(err)
}

// ExitCode maps err to a process exit status: 0 for nil, 2 for bad input and
// 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyQuery):
		return 2
	default:
		return 1
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyQuery), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
