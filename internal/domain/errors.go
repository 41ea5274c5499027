package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
	ErrInventoryNotFound    = errors.New("inventory record not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidToken         = errors.New("invalid token")
	ErrLockNotAcquired      = errors.New("lock is held by another caller")
	ErrNoMeetingLocations   = errors.New("user matches exist but no meeting locations were given")
)

// ErrorKind classifies an AppError for transport mapping.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindUnknown    ErrorKind = "unknown"
)

// Rejection codes returned to clients so a UI can react to each case.
const (
	CodeInvalidFormat   = "invalid-format"
	CodeNoMatches       = "no-matches"
	CodeNotActive       = "not-active"
	CodeNotExpected     = "not-expected"
	CodeAlreadyReceived = "already-received"
	CodeInvalidSpec     = "invalid-specification"
	CodeNoParticipants  = "no-senders-or-receivers"
	CodeNothingMatched  = "no-matches-generated"
	CodeConfiguration   = "configuration"
	CodeBusy            = "busy"
	CodeStaleMatch      = "stale-match"
	CodeMatchNotFound   = "match-not-found"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeRateLimited     = "rate-limited"
)

// AppError is the error type use cases return to delivery layers.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
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

func NewValidationError(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

func NewNotFoundError(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// WrapUnknown wraps an unclassified collaborator failure with context.
func WrapUnknown(message string, err error) *AppError {
	return &AppError{Kind: KindUnknown, Message: message, Err: err}
}

// KindOf reports the kind of err, KindUnknown when err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// CodeOf reports the rejection code of err, or "" when it carries none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
