package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrSequenceSkip     = errors.New("sequence id would skip the counter")
	ErrDuplicateContent = errors.New("duplicate content within language")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (analysis, quest, article, ...)
	SequenceID   int64  // Sequence id of the existing/conflicting revision
	Language     string // Language of the existing/conflicting revision
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// SequenceSkipError indicates a publish addressed a sequence id beyond the
// next one the allocator would issue, which would puncture the gapless sequence.
type SequenceSkipError struct {
	Collection string
	Desired    int64
	Next       int64 // the id the allocator would issue next
}

// Error implements the error interface
func (e *SequenceSkipError) Error() string {
	return fmt.Sprintf("sequence id %d skips ahead of next id %d for %s", e.Desired, e.Next, e.Collection)
}

// StatusCode implements the HTTPError interface
func (e *SequenceSkipError) StatusCode() int {
	return http.StatusBadRequest
}

// Is allows errors.Is() to match against ErrSequenceSkip
func (e *SequenceSkipError) Is(target error) bool {
	return target == ErrSequenceSkip
}

// DuplicateContentError indicates a sync batch carried colliding values
// within a single language. Raised before any write is attempted.
type DuplicateContentError struct {
	Language string
	Value    string
}

// Error implements the error interface
func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("duplicate value %q within language %s", e.Value, e.Language)
}

// StatusCode implements the HTTPError interface
func (e *DuplicateContentError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrDuplicateContent
func (e *DuplicateContentError) Is(target error) bool {
	return target == ErrDuplicateContent
}
