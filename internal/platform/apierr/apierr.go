package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the taxonomy sentinels by status.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	}
	return false
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, "not_found", errors.New(msg))
}

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, "validation_error", fmt.Errorf(format, args...))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, "unauthorized", errors.New(msg))
}
