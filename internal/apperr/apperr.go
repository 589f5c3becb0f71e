// Package apperr defines the error type returned by services and translated
// into HTTP responses by the fiber error handler.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error independently of the transport.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// Machine readable codes surfaced to clients in the "error" field.
const (
	CodeOTPIncorrect        = "OTP_INCORRECT"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeJWTExpired          = "JWT_EXPIRED"
	CodeProductNameExist    = "PRODUCT_NAME_EXIST"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeLimitFileSize       = "LIMIT_FILE_SIZE"
	CodeLimitUnexpectedFile = "LIMIT_UNEXPECTED_FILE"
	CodeInvalidFileType     = "INVALID_FILE_TYPE"
	CodeNotUploadingFile    = "NOT_UPLOADING_FILE"
)

// Error carries a kind, an optional code and an optional field map.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// WithCode returns a copy of e carrying code.
func (e *Error) WithCode(code string) *Error {
	cp := *e
	cp.Code = code
	return &cp
}

// Status maps the kind onto an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error   { return newf(KindBadRequest, format, args...) }
func Unauthorized(format string, args ...any) *Error { return newf(KindUnauthorized, format, args...) }
func Forbidden(format string, args ...any) *Error    { return newf(KindForbidden, format, args...) }
func NotFound(format string, args ...any) *Error     { return newf(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error     { return newf(KindConflict, format, args...) }

// Internal wraps an unexpected failure. The message is what clients see.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// Validation builds a BadRequest error carrying per-field messages.
func Validation(fields map[string]string) *Error {
	return &Error{
		Kind:    KindBadRequest,
		Code:    CodeValidationFailed,
		Message: "validation failed",
		Fields:  fields,
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
