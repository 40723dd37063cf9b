// Package apperror defines the error kinds shared by every layer.
//
// Each kind is a sentinel error (ErrNotFound, ErrIllegalTransition, ...).
// Constructors wrap the sentinel in an *AppError that carries a
// human-readable message, so callers can match with errors.Is and still
// show something useful:
//
//	if errors.Is(err, apperror.ErrIllegalTransition) { ... }
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("Validation Error")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrInvalidRating     = errors.New("invalid rating")
	ErrPersistence       = errors.New("persistence failure")
	ErrCorruptState      = errors.New("corrupt state")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying storage error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and, when present, the underlying cause,
// so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// IllegalTransition reports a swap status change that the lifecycle does not allow.
func IllegalTransition(id, from, to string) *AppError {
	return &AppError{
		Err:     ErrIllegalTransition,
		Message: fmt.Sprintf("swap request %s cannot move from %s to %s", id, from, to),
	}
}

// InvalidRating reports a rating outside the accepted 1..5 range.
func InvalidRating(rating int) *AppError {
	return &AppError{
		Err:     ErrInvalidRating,
		Message: fmt.Sprintf("rating must be between 1 and 5, got %d", rating),
		Field:   "rating",
	}
}

// Persistence wraps an error from the underlying store.
func Persistence(op, key string, cause error) *AppError {
	return &AppError{
		Err:     ErrPersistence,
		Message: fmt.Sprintf("storage %s %q failed", op, key),
		Cause:   cause,
	}
}

// CorruptState reports a stored blob that exists but cannot be decoded.
func CorruptState(key string, cause error) *AppError {
	return &AppError{
		Err:     ErrCorruptState,
		Message: fmt.Sprintf("stored data under %q is corrupt", key),
		Cause:   cause,
	}
}
