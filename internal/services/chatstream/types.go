// File: internal/services/chatstream/types.go
package chatstream

import "context"

// State is the lifecycle phase of a single chat round.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateSettled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateSettled:
		return "settled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// VisibleMessage is one entry of the message list as the rendering layer
// sees it. Snapshots handed to UpdateFunc are value copies; the rendering
// layer never observes in-place mutation.
type VisibleMessage struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UpdateFunc receives each successive snapshot of the visible message list:
// the immutable prior history plus the growing assistant message, replaced
// wholesale on every chunk.
type UpdateFunc func(messages []VisibleMessage)

// Streamer produces the assistant reply for a conversation as a sequence of
// text chunks delivered through onDelta in arrival order.
type Streamer interface {
	StreamChat(ctx context.Context, model string, history []VisibleMessage, onDelta func(string) error) error
}

// ChatDirectory answers the ownership precondition before any network call
// is made.
type ChatDirectory interface {
	ExistsByIDAndUserID(ctx context.Context, chatID, userID uint) (bool, error)
}

// Store is the persistence collaborator notified after a round settles. All
// three writes of a settled round are independent; the reconciler logs
// failures and keeps going.
type Store interface {
	SaveMessage(ctx context.Context, chatID uint, role, content string) error
	TouchChat(ctx context.Context, chatID uint) error
	UpdateChatTitle(ctx context.Context, chatID uint, title string) error
}

// Logger defines the logging interface used by the reconciler.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
