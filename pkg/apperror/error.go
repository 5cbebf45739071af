package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error beyond its HTTP mapping so callers can branch on
// failure class without string matching.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindAuth             Kind = "auth"
	KindNotAuthenticated Kind = "not_authenticated"
	KindTimeout          Kind = "timeout"
	KindNetwork          Kind = "network"
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindInternal         Kind = "internal"
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

func Auth(message string) *AppError {
	return New(http.StatusUnauthorized, KindAuth, message, nil)
}

func NotAuthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, KindNotAuthenticated, message, nil)
}

func Timeout(message string, err error) *AppError {
	return New(http.StatusGatewayTimeout, KindTimeout, message, err)
}

func Network(message string, err error) *AppError {
	return New(http.StatusBadGateway, KindNetwork, message, err)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, KindForbidden, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, KindConflict, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, KindInternal, "Internal Server Error", err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
