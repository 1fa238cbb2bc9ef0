// File: internal/services/chatstream/reconciler.go

// Package chatstream manages the lifecycle of a single chat round: send the
// user message, stream the assistant reply chunk by chunk into a visible
// message list, then notify the persistence collaborator. Rounds move
// through Idle -> Sending -> Streaming -> Settled or Failed; a failed round
// discards its partial assistant text and persists nothing.
package chatstream

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
)

// Reconciler coordinates chat rounds. At most one round may be in flight
// per chat within this process; the guard does not extend across processes
// or browser tabs, and the persistence layer's creation ordering is the
// arbiter for anything that races past it.
type Reconciler struct {
	config   *Config
	chats    ChatDirectory
	store    Store
	streamer Streamer
	notifier *Notifier
	logger   Logger

	mu       sync.Mutex
	inFlight map[uint]State

	onSettled func(chatID uint)
}

func NewReconciler(
	config *Config,
	chats ChatDirectory,
	store Store,
	streamer Streamer,
	notifier *Notifier,
	logger Logger,
) (*Reconciler, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = NewNotifier(nil)
	}
	return &Reconciler{
		config:   config,
		chats:    chats,
		store:    store,
		streamer: streamer,
		notifier: notifier,
		logger:   logger,
		inFlight: make(map[uint]State),
	}, nil
}

// SetOnSettled registers a hook invoked after every settled round, e.g. to
// refresh a conversation list.
func (r *Reconciler) SetOnSettled(fn func(chatID uint)) {
	r.onSettled = fn
}

// State reports the current round state for a chat. Chats with no
// outstanding round are Idle.
func (r *Reconciler) State(chatID uint) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.inFlight[chatID]; ok {
		return s
	}
	return StateIdle
}

// Send runs one round: the user text is appended optimistically, the
// assistant reply streams in append-only chunk order, and on settlement the
// user message, the assistant message, and the chat timestamp are persisted
// as three independent writes. onUpdate, which may be nil, observes every
// snapshot of the visible list. The returned slice is the final visible
// list; on failure it is the unchanged prior history and the caller may
// retry.
func (r *Reconciler) Send(
	ctx context.Context,
	userID, chatID uint,
	model string,
	history []VisibleMessage,
	userText string,
	onUpdate UpdateFunc,
) ([]VisibleMessage, error) {
	if strings.TrimSpace(userText) == "" {
		return snapshot(history), ErrEmptyMessage
	}

	// Ownership is a precondition, checked before any network call.
	owned, err := r.chats.ExistsByIDAndUserID(ctx, chatID, userID)
	if err != nil {
		return snapshot(history), NewUnauthorizedError(userID, chatID)
	}
	if !owned {
		return snapshot(history), NewUnauthorizedError(userID, chatID)
	}

	if !r.acquire(chatID) {
		return snapshot(history), ErrRoundInFlight
	}
	defer r.release(chatID)

	base := snapshot(history)

	r.setState(chatID, StateSending)
	userMsg := VisibleMessage{ID: uuid.NewString(), Role: domain.RoleUser, Content: userText}
	visible := append(snapshot(base), userMsg)
	publish(onUpdate, visible)

	r.setState(chatID, StateStreaming)
	assistantID := uuid.NewString()
	var reply strings.Builder

	streamErr := r.streamer.StreamChat(ctx, model, snapshot(visible), func(delta string) error {
		reply.WriteString(delta)
		snap := append(snapshot(visible), VisibleMessage{
			ID:      assistantID,
			Role:    domain.RoleAssistant,
			Content: reply.String(),
		})
		publish(onUpdate, snap)
		return nil
	})

	if streamErr != nil {
		r.setState(chatID, StateFailed)
		r.logger.Error("chat round failed", "chat_id", chatID, "user_id", userID, "error", streamErr)
		r.notifier.Notify(uuid.NewString(), "Failed to send message. Please try again.")
		// Partial assistant text is discarded and nothing is persisted; the
		// visible list rolls back to the pre-round history.
		publish(onUpdate, snapshot(base))
		return snapshot(base), NewStreamingError(chatID, streamErr)
	}

	final := snapshot(visible)
	if reply.Len() > 0 {
		final = append(final, VisibleMessage{
			ID:      assistantID,
			Role:    domain.RoleAssistant,
			Content: reply.String(),
		})
	}
	r.setState(chatID, StateSettled)
	publish(onUpdate, snapshot(final))

	r.persistRound(chatID, userText, reply.String())
	r.maybeDeriveTitle(chatID, final)

	if r.onSettled != nil {
		r.onSettled(chatID)
	}

	r.logger.Info("chat round settled", "chat_id", chatID, "reply_length", reply.Len())
	return final, nil
}

// persistRound writes the round's outcome: user message, assistant message,
// then the chat timestamp. The writes run on a fresh context so a closed
// request cannot cancel them, and each failure is logged without rolling
// back the others — the content already reached the screen.
func (r *Reconciler) persistRound(chatID uint, userText, assistantText string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.SaveTimeout)
	defer cancel()

	if err := r.store.SaveMessage(ctx, chatID, domain.RoleUser, userText); err != nil {
		r.logger.Error("failed to save user message", "chat_id", chatID, "error", err)
	}
	if assistantText != "" {
		if err := r.store.SaveMessage(ctx, chatID, domain.RoleAssistant, assistantText); err != nil {
			r.logger.Error("failed to save assistant message", "chat_id", chatID, "error", err)
		}
	}
	if err := r.store.TouchChat(ctx, chatID); err != nil {
		r.logger.Error("failed to touch chat timestamp", "chat_id", chatID, "error", err)
	}
}

// maybeDeriveTitle sets the chat title from the first user message, exactly
// once per conversation: the guard is the count of user messages in the
// settled history, not a persisted flag.
func (r *Reconciler) maybeDeriveTitle(chatID uint, final []VisibleMessage) {
	var first string
	count := 0
	for _, m := range final {
		if m.Role == domain.RoleUser {
			if count == 0 {
				first = m.Content
			}
			count++
		}
	}
	if count != 1 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.SaveTimeout)
	defer cancel()

	title := DeriveTitle(first, r.config.TitleMaxChars, r.config.TitleEllipsis)
	if err := r.store.UpdateChatTitle(ctx, chatID, title); err != nil {
		r.logger.Error("failed to derive chat title", "chat_id", chatID, "error", err)
	}
}

// DeriveTitle truncates text to maxChars characters, appending ellipsis
// when anything was cut.
func DeriveTitle(text string, maxChars int, ellipsis string) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + ellipsis
}

func (r *Reconciler) acquire(chatID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[chatID]; busy {
		return false
	}
	r.inFlight[chatID] = StateSending
	return true
}

func (r *Reconciler) release(chatID uint) {
	r.mu.Lock()
	delete(r.inFlight, chatID)
	r.mu.Unlock()
}

func (r *Reconciler) setState(chatID uint, s State) {
	r.mu.Lock()
	if _, ok := r.inFlight[chatID]; ok {
		r.inFlight[chatID] = s
	}
	r.mu.Unlock()
}

func snapshot(messages []VisibleMessage) []VisibleMessage {
	out := make([]VisibleMessage, len(messages))
	copy(out, messages)
	return out
}

func publish(onUpdate UpdateFunc, messages []VisibleMessage) {
	if onUpdate != nil {
		onUpdate(messages)
	}
}
