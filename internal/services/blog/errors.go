// File: internal/services/blog/errors.go
package blog

import "fmt"

type ErrorType string

const (
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeSlug         ErrorType = "SLUG"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeStorage      ErrorType = "STORAGE"
)

type BlogError struct {
	Type      ErrorType
	Operation string
	Message   string
	PostID    uint
	AuthorID  uint
	Cause     error
}

func (e *BlogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Blog %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Blog %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *BlogError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *BlogError {
	return &BlogError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewSlugError(operation, msg string, cause error) *BlogError {
	return &BlogError{Type: ErrTypeSlug, Operation: operation, Message: msg, Cause: cause}
}

func NewNotFoundError(operation string, postID uint) *BlogError {
	return &BlogError{Type: ErrTypeNotFound, Operation: operation, Message: "post not found", PostID: postID}
}

func NewStorageError(operation, msg string, cause error) *BlogError {
	return &BlogError{Type: ErrTypeStorage, Operation: operation, Message: msg, Cause: cause}
}
