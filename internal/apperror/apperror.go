package apperror

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds the HTTP layer maps to status codes.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrAuth               = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrStorage            = errors.New("storage error")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// AppError carries a kind plus the client-facing message. The wrapped
// cause stays server-side; handlers only ever serialize Message and Details.
type AppError struct {
	Err     error             // one of the sentinel kinds above
	Cause   error             // underlying error, never sent to clients
	Message string            // human-readable error message
	Details map[string]string // optional field-level detail (validation only)
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message}
}

func ValidationFields(message string, details map[string]string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Details: details}
}

func NotFound(resource string) *AppError {
	return &AppError{Err: ErrNotFound, Message: resource + " not found"}
}

func Auth(message string) *AppError {
	return &AppError{Err: ErrAuth, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// Storage converts an arbitrary store/library failure into the generic
// storage kind, or the unavailable kind when the error carries a
// connection/permission/IO signal.
func Storage(message string, cause error) *AppError {
	kind := ErrStorage
	if unavailable(cause) {
		kind = ErrStorageUnavailable
		message = "storage unavailable"
	}
	return &AppError{Err: kind, Cause: cause, Message: message}
}

// unavailable reports whether err looks like the store itself is unreachable
// or rejecting us, rather than a per-record failure.
func unavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range []string{
		"connection refused",
		"connection reset",
		"permission denied",
		"too many connections",
		"i/o timeout",
		"broken pipe",
	} {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
