// Package errors provides standardized domain errors with codes for the Pictor API.
//
// Usage:
//
//	// In services - return typed errors
//	if alreadyMember {
//	    return errors.AlreadyInPool("post is already in this pool")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    return nil, huma.Error404NotFound(err.Error())
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeDuplicateMedia:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeInternal           Code = "INTERNAL"
	CodeDuplicateMedia     Code = "DUPLICATE_MEDIA"
	CodeUnsupportedMedia   Code = "UNSUPPORTED_MEDIA_TYPE"
	CodeMediaProcessing    Code = "MEDIA_PROCESSING_FAILED"
	CodeEmptyUpload        Code = "EMPTY_UPLOAD"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeTagConflict        Code = "TAG_CONFLICT"
	CodeAlreadyInPool      Code = "ALREADY_IN_POOL"
	CodeInvalidPosition    Code = "INVALID_POSITION"
	CodeMembershipMismatch Code = "MEMBERSHIP_MISMATCH"
	CodeStorageFailure     Code = "STORAGE_FAILURE"
	CodeStoreFailure       Code = "STORE_FAILURE"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation, CodeInvalidPosition, CodeMembershipMismatch, CodeEmptyUpload:
		return http.StatusBadRequest
	case CodeDuplicateMedia, CodeTagConflict, CodeAlreadyInPool:
		return http.StatusConflict
	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeMediaProcessing:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
	ErrDuplicateMedia     = &Error{Code: CodeDuplicateMedia, Message: "identical media already exists"}
	ErrUnsupportedMedia   = &Error{Code: CodeUnsupportedMedia, Message: "unsupported media type"}
	ErrMediaProcessing    = &Error{Code: CodeMediaProcessing, Message: "media processing failed"}
	ErrEmptyUpload        = &Error{Code: CodeEmptyUpload, Message: "upload is empty"}
	ErrPayloadTooLarge    = &Error{Code: CodePayloadTooLarge, Message: "upload exceeds maximum size"}
	ErrTagConflict        = &Error{Code: CodeTagConflict, Message: "tag conflict"}
	ErrAlreadyInPool      = &Error{Code: CodeAlreadyInPool, Message: "post is already in pool"}
	ErrInvalidPosition    = &Error{Code: CodeInvalidPosition, Message: "invalid pool position"}
	ErrMembershipMismatch = &Error{Code: CodeMembershipMismatch, Message: "pool membership mismatch"}
	ErrStorageFailure     = &Error{Code: CodeStorageFailure, Message: "media storage failure"}
	ErrStoreFailure       = &Error{Code: CodeStoreFailure, Message: "catalog store failure"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// DuplicateMedia creates a duplicate media error carrying the existing post ID.
func DuplicateMedia(existingPostID int64) *Error {
	return &Error{
		Code:    CodeDuplicateMedia,
		Message: "identical media already exists",
		Details: map[string]int64{"existing_post_id": existingPostID},
	}
}

// UnsupportedMedia creates an unsupported media type error.
func UnsupportedMedia(msg string) *Error {
	return &Error{Code: CodeUnsupportedMedia, Message: msg}
}

// MediaProcessing creates a media processing error.
func MediaProcessing(msg string) *Error {
	return &Error{Code: CodeMediaProcessing, Message: msg}
}

// EmptyUpload creates an empty upload error.
func EmptyUpload(msg string) *Error {
	return &Error{Code: CodeEmptyUpload, Message: msg}
}

// PayloadTooLarge creates a payload too large error.
func PayloadTooLarge(msg string) *Error {
	return &Error{Code: CodePayloadTooLarge, Message: msg}
}

// TagConflict creates a tag conflict error.
func TagConflict(msg string) *Error {
	return &Error{Code: CodeTagConflict, Message: msg}
}

// AlreadyInPool creates an already in pool error.
func AlreadyInPool(msg string) *Error {
	return &Error{Code: CodeAlreadyInPool, Message: msg}
}

// InvalidPosition creates an invalid position error.
func InvalidPosition(msg string) *Error {
	return &Error{Code: CodeInvalidPosition, Message: msg}
}

// InvalidPositionf creates an invalid position error with formatted message.
func InvalidPositionf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidPosition, Message: fmt.Sprintf(format, args...)}
}

// MembershipMismatch creates a membership mismatch error.
func MembershipMismatch(msg string) *Error {
	return &Error{Code: CodeMembershipMismatch, Message: msg}
}

// StorageFailure wraps a transient media storage error.
func StorageFailure(err error) *Error {
	return &Error{Code: CodeStorageFailure, Message: "media storage failure", cause: err}
}

// StoreFailure wraps a transient catalog store error.
func StoreFailure(err error) *Error {
	return &Error{Code: CodeStoreFailure, Message: "catalog store failure", cause: err}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// ExistingPostID extracts the existing post ID from a DuplicateMedia error.
// Returns 0 and false if err is not a DuplicateMedia error.
func ExistingPostID(err error) (int64, bool) {
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeDuplicateMedia {
		return 0, false
	}
	if details, ok := e.Details.(map[string]int64); ok {
		return details["existing_post_id"], true
	}
	return 0, false
}
