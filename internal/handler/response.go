// Package handler turns HTTP requests into service calls and service
// results (or errors) back into JSON responses.
package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// WHY HELPERS?
// Without helpers, every handler repeats the same boilerplate:
//   w.Header().Set("Content-Type", "application/json")
//   w.WriteHeader(statusCode)
//   json.NewEncoder(w).Encode(data)
//
// With helpers, handlers are cleaner and more consistent:
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "swap request not found with id abc123"}
//
// Validation errors add the offending field:
//   {"error": "validation_error", "message": "...", "field": "rating"}

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/skillswap/internal/apperror"
	"github.com/sakif/skillswap/internal/auth"
)

// maxBodyBytes caps request bodies. Every payload here is a small form.
const maxBodyBytes = 64 << 10

// validate checks request DTO shapes (required fields, lengths, formats).
// Business rules stay in the service layer; this only rejects malformed input.
var validate = newValidator()

// newValidator reports fields by their JSON names, so a failure on
// TargetID comes back as "targetId", the name the client actually sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending input field, for validation errors
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
// Any header changes after that are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent: we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
//
//	ErrValidation, ErrInvalidRating → 400
//	ErrForbidden                    → 403
//	ErrNotFound                     → 404
//	ErrIllegalTransition, ErrConflict → 409
//	ErrCorruptState                 → 500
//	ErrPersistence                  → 503 (the backend may come back)
//
// errors.Is walks the whole chain, so a service error wrapped with
// fmt.Errorf("service/swap: ...: %w", err) still matches its sentinel.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		// Unknown error: never expose internal details to the client.
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status, errorType := http.StatusInternalServerError, "internal_error"
	message := appErr.Message

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, errorType = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrInvalidRating):
		status, errorType = http.StatusBadRequest, "invalid_rating"
	case errors.Is(err, apperror.ErrForbidden):
		status, errorType = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status, errorType = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrIllegalTransition):
		status, errorType = http.StatusConflict, "illegal_transition"
	case errors.Is(err, apperror.ErrConflict):
		status, errorType = http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrPersistence):
		// The message names the storage key; the cause (driver error) stays in the logs.
		status, errorType = http.StatusServiceUnavailable, "storage_unavailable"
	case errors.Is(err, apperror.ErrCorruptState):
		status, errorType = http.StatusInternalServerError, "corrupt_state"
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: message,
		Field:   appErr.Field,
	})
}

// decodeJSON reads a JSON body into dst and validates its shape.
//
// Unknown fields are rejected so that a typo ("ratng") fails loudly instead
// of silently sending a zero value. The returned error is always an
// apperror.ErrValidation, ready for writeError.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("", "request body is empty")
		}
		return apperror.ValidationFailed("", "invalid JSON body: "+err.Error())
	}
	return validateStruct(dst)
}

// validateStruct runs the validator tags on v and converts the first
// failure into an apperror with a readable message.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	fe := fieldErrs[0]
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required", "required_without":
		msg = field + " is required"
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		msg = field + " must be a valid email address"
	case "url":
		msg = field + " must be a valid URL"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return apperror.ValidationFailed(field, msg)
}

// actorID returns the user id the session stamp names.
// Routes using it sit behind auth.RequireAuth, so the id is always present
// there; a missing id is treated as forbidden.
func actorID(r *http.Request) (string, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperror.Forbidden("no session")
	}
	return id, nil
}
