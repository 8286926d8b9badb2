package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that carry their own HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	// ErrNotFound indicates the target record does not exist for the caller,
	// including soft-deleted records when an active one was expected.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates an ownership mismatch or missing caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates a required field is empty or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidParent indicates the candidate parent folder is missing,
	// soft-deleted, owned by someone else, or is the folder itself.
	ErrInvalidParent = errors.New("invalid parent folder")

	// ErrCyclicMove indicates the candidate parent is a descendant of the
	// folder being moved.
	ErrCyclicMove = errors.New("cannot move a folder into its own subfolder")
)

// ConflictError represents a resource conflict with details about the
// existing resource.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}
