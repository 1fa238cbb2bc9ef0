// File: internal/services/chatstream/errors.go
package chatstream

import (
	"errors"
	"fmt"
)

var (
	// ErrRoundInFlight rejects a second send while a round is outstanding
	// for the same chat.
	ErrRoundInFlight = errors.New("a round is already in flight for this chat")

	ErrEmptyMessage = errors.New("message text cannot be empty")
)

type ErrorType string

const (
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeStreaming    ErrorType = "STREAMING"
)

type RoundError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    uint
	UserID    uint
	Cause     error
}

func (e *RoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Round %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Round %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *RoundError) Unwrap() error {
	return e.Cause
}

func NewUnauthorizedError(userID, chatID uint) *RoundError {
	return &RoundError{
		Type:      ErrTypeUnauthorized,
		Operation: "authorization",
		Message:   "chat not found or unauthorized",
		UserID:    userID,
		ChatID:    chatID,
	}
}

func NewStreamingError(chatID uint, cause error) *RoundError {
	return &RoundError{
		Type:      ErrTypeStreaming,
		Operation: "streaming",
		Message:   "assistant stream failed",
		ChatID:    chatID,
		Cause:     cause,
	}
}
