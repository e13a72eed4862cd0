package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrInvalidReference, ErrInvalidFormat:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrDuplicateBooking, ErrConflict:
		return http.StatusConflict
	case ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ClientFault reports whether the caller caused the error (4xx).
func (e *AppError) ClientFault() bool {
	status := e.StatusCode()
	return status >= 400 && status < 500
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrInvalidFormat
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrInvalidReference
	ErrDuplicateBooking
	ErrConflict
	ErrStoreUnavailable
)

var codeNames = map[ErrorCode]string{
	ErrNotFound:         "NotFound",
	ErrInvalidFormat:    "InvalidFormat",
	ErrUnauthorized:     "Unauthorized",
	ErrForbidden:        "Forbidden",
	ErrInternal:         "Internal",
	ErrInvalidReference: "InvalidReference",
	ErrDuplicateBooking: "DuplicateBooking",
	ErrConflict:         "Conflict",
	ErrStoreUnavailable: "StoreUnavailable",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// NotFound reports a missing resource identified by id.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

// InvalidReference reports a foreign key that does not resolve. field names
// the request field carrying the id.
func InvalidReference(field string, id any) *AppError {
	return &AppError{
		Code:    ErrInvalidReference,
		Message: fmt.Sprintf("invalid %s: %v does not exist", field, id),
		Field:   field,
	}
}

func InvalidFormat(field, message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidFormat,
		Message: message,
		Field:   field,
		Err:     err,
	}
}

func DuplicateBooking(patientID, doctorID int64, at time.Time) *AppError {
	return &AppError{
		Code: ErrDuplicateBooking,
		Message: fmt.Sprintf("appointment already exists for patient %d with doctor %d at %s",
			patientID, doctorID, at.UTC().Format(time.RFC3339)),
		Field: "dateTime",
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: message,
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func StoreUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrStoreUnavailable,
		Message: "data store unavailable",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
