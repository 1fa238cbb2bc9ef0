// File: internal/services/chatstream/notifier.go
package chatstream

import (
	"sync"
	"time"
)

// Notice is a user-facing notification produced by a failed round. The
// token is an idempotency key: delivering the same token twice is a no-op.
type Notice struct {
	Token   string    `json:"token"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier fans notices out to a sink while suppressing repeats of the same
// token. The dedup state is explicit and session-scoped rather than hidden
// module-level state.
type Notifier struct {
	mu   sync.Mutex
	seen map[string]struct{}
	sink func(Notice)
}

// NewNotifier wraps sink. A nil sink drops notices but still records
// tokens.
func NewNotifier(sink func(Notice)) *Notifier {
	return &Notifier{
		seen: make(map[string]struct{}),
		sink: sink,
	}
}

// Notify delivers a notice once per token. Reports whether the notice was
// actually delivered.
func (n *Notifier) Notify(token, message string) bool {
	n.mu.Lock()
	if _, dup := n.seen[token]; dup {
		n.mu.Unlock()
		return false
	}
	n.seen[token] = struct{}{}
	sink := n.sink
	n.mu.Unlock()

	if sink != nil {
		sink(Notice{Token: token, Message: message, At: time.Now()})
	}
	return true
}

// Reset forgets all seen tokens.
func (n *Notifier) Reset() {
	n.mu.Lock()
	n.seen = make(map[string]struct{})
	n.mu.Unlock()
}
