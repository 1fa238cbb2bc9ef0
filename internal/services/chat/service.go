// File: internal/services/chat/service.go
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
	chatrepo "github.com/inkwell-blog/go-inkwell/internal/repository/chat"
	messagerepo "github.com/inkwell-blog/go-inkwell/internal/repository/message"
	"github.com/inkwell-blog/go-inkwell/internal/services/ai"
	"github.com/inkwell-blog/go-inkwell/internal/services/chatstream"
)

// Logger defines the logging interface used by the chat service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ChatSummary is one entry of the user's conversation list, with a preview
// of the most recent message.
type ChatSummary struct {
	Chat        domain.Chat `json:"chat"`
	LastMessage string      `json:"last_message,omitempty"`
}

// Service owns conversation CRUD and delegates the streaming round itself
// to the reconciler.
type Service struct {
	config     *Config
	chats      chatrepo.ChatRepository
	messages   messagerepo.MessageRepository
	provider   ai.CompletionProvider
	reconciler *chatstream.Reconciler
	logger     Logger
}

func NewService(
	config *Config,
	chats chatrepo.ChatRepository,
	messages messagerepo.MessageRepository,
	provider ai.CompletionProvider,
	logger Logger,
) (*Service, error) {
	if chats == nil || messages == nil {
		return nil, NewValidationError("constructor", "chat and message repositories are required")
	}
	if provider == nil {
		return nil, NewValidationError("constructor", "completion provider is required")
	}
	if config == nil {
		config = DefaultChatConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("config", err.Error())
	}

	streamConfig := chatstream.DefaultConfig()
	streamConfig.SaveTimeout = config.SaveTimeout

	store := &repoStore{chats: chats, messages: messages}
	reconciler, err := chatstream.NewReconciler(
		streamConfig,
		chats,
		store,
		&providerStreamer{provider: provider},
		nil,
		logger,
	)
	if err != nil {
		return nil, NewInternalError("constructor", "reconciler setup failed", err)
	}

	return &Service{
		config:     config,
		chats:      chats,
		messages:   messages,
		provider:   provider,
		reconciler: reconciler,
		logger:     logger,
	}, nil
}

// Reconciler exposes the round state machine, e.g. for handlers that report
// streaming state.
func (s *Service) Reconciler() *chatstream.Reconciler {
	return s.reconciler
}

func (s *Service) CreateChat(ctx context.Context, userID uint, title, model string) (*domain.Chat, error) {
	if userID == 0 {
		return nil, NewValidationError("create_chat", "user ID is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = s.config.DefaultTitle
	}
	if len(title) > MaxTitleLength {
		return nil, NewValidationError("create_chat", "title is too long")
	}
	if model == "" {
		model = s.config.DefaultModel
	}
	if !IsKnownModel(model) {
		return nil, NewValidationError("create_chat", fmt.Sprintf("unknown model %q", model))
	}

	created, err := s.chats.Create(ctx, &domain.Chat{
		UserID: userID,
		Title:  title,
		Model:  model,
	})
	if err != nil {
		return nil, NewInternalError("create_chat", "could not create chat", err)
	}

	s.logger.Info("chat created", "chat_id", created.ID, "user_id", userID, "model", model)
	return created, nil
}

// GetUserChats lists the user's conversations newest-first, each with a
// preview of its latest message.
func (s *Service) GetUserChats(ctx context.Context, userID uint) ([]ChatSummary, error) {
	if userID == 0 {
		return nil, NewValidationError("get_user_chats", "user ID is required")
	}
	chats, err := s.chats.FindByUserID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("get_user_chats", "could not list chats", err)
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		summary := ChatSummary{Chat: c}
		last, err := s.messages.FindLastByChatID(ctx, c.ID)
		if err != nil {
			s.logger.Warn("could not load last message", "chat_id", c.ID, "error", err)
		} else if last != nil {
			summary.LastMessage = last.Content
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Service) GetChatMessages(ctx context.Context, userID, chatID uint) ([]domain.Message, error) {
	if err := s.requireOwnership(ctx, "get_chat_messages", userID, chatID); err != nil {
		return nil, err
	}
	messages, err := s.messages.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, NewInternalError("get_chat_messages", "could not load messages", err)
	}
	return messages, nil
}

func (s *Service) DeleteChat(ctx context.Context, userID, chatID uint) error {
	if userID == 0 || chatID == 0 {
		return NewValidationError("delete_chat", "user ID and chat ID are required")
	}
	if err := s.chats.Delete(ctx, chatID, userID); err != nil {
		if err == chatrepo.ErrChatNotFound || err == chatrepo.ErrUnauthorizedAccess {
			return NewNotFoundError("delete_chat", chatID)
		}
		return NewInternalError("delete_chat", "could not delete chat", err)
	}
	return nil
}

func (s *Service) UpdateChatTitle(ctx context.Context, userID, chatID uint, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewValidationError("update_chat_title", "title cannot be empty")
	}
	if len(title) > MaxTitleLength {
		return NewValidationError("update_chat_title", "title is too long")
	}
	if err := s.chats.UpdateTitle(ctx, chatID, userID, title); err != nil {
		if err == chatrepo.ErrChatNotFound || err == chatrepo.ErrUnauthorizedAccess {
			return NewNotFoundError("update_chat_title", chatID)
		}
		return NewInternalError("update_chat_title", "could not update title", err)
	}
	return nil
}

// SendMessage runs one streaming round against the chat's model. onDelta,
// which may be nil, receives each raw text chunk of the assistant reply as
// it arrives. The returned string is the settled assistant reply.
func (s *Service) SendMessage(
	ctx context.Context,
	userID, chatID uint,
	userText string,
	onDelta func(delta string),
) (string, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return "", NewNotFoundError("send_message", chatID)
	}
	if chat.UserID != userID {
		return "", NewUnauthorizedError("send_message", userID, chatID)
	}

	stored, err := s.messages.FindByChatID(ctx, chatID)
	if err != nil {
		return "", NewInternalError("send_message", "could not load history", err)
	}
	history := make([]chatstream.VisibleMessage, 0, len(stored))
	for _, m := range stored {
		history = append(history, chatstream.VisibleMessage{
			ID:      fmt.Sprintf("%d", m.ID),
			Role:    m.Role,
			Content: m.Content,
		})
	}

	// The reconciler republishes the whole visible list per chunk; the
	// transport wants only the new tail, so track how much of the
	// assistant message has been forwarded already.
	sent := 0
	onUpdate := chatstream.UpdateFunc(nil)
	if onDelta != nil {
		onUpdate = func(messages []chatstream.VisibleMessage) {
			if len(messages) == 0 {
				return
			}
			last := messages[len(messages)-1]
			if last.Role != domain.RoleAssistant {
				return
			}
			if len(last.Content) > sent {
				onDelta(last.Content[sent:])
				sent = len(last.Content)
			}
		}
	}

	final, err := s.reconciler.Send(ctx, userID, chatID, chat.Model, history, userText, onUpdate)
	if err != nil {
		return "", err
	}

	if len(final) > 0 && final[len(final)-1].Role == domain.RoleAssistant {
		return final[len(final)-1].Content, nil
	}
	return "", nil
}

func (s *Service) requireOwnership(ctx context.Context, operation string, userID, chatID uint) error {
	if userID == 0 || chatID == 0 {
		return NewValidationError(operation, "user ID and chat ID are required")
	}
	owned, err := s.chats.ExistsByIDAndUserID(ctx, chatID, userID)
	if err != nil {
		return NewInternalError(operation, "ownership check failed", err)
	}
	if !owned {
		return NewUnauthorizedError(operation, userID, chatID)
	}
	return nil
}

// providerStreamer adapts the completion provider to the reconciler's
// Streamer interface.
type providerStreamer struct {
	provider ai.CompletionProvider
}

func (p *providerStreamer) StreamChat(ctx context.Context, model string, history []chatstream.VisibleMessage, onDelta func(string) error) error {
	messages := make([]ai.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	return p.provider.StreamChat(ctx, model, messages, onDelta)
}

// repoStore adapts the chat and message repositories to the reconciler's
// Store interface.
type repoStore struct {
	chats    chatrepo.ChatRepository
	messages messagerepo.MessageRepository
}

func (r *repoStore) SaveMessage(ctx context.Context, chatID uint, role, content string) error {
	_, err := r.messages.Create(ctx, &domain.Message{
		ChatID:  chatID,
		Role:    role,
		Content: content,
	})
	return err
}

func (r *repoStore) TouchChat(ctx context.Context, chatID uint) error {
	return r.chats.TouchUpdatedAt(ctx, chatID)
}

func (r *repoStore) UpdateChatTitle(ctx context.Context, chatID uint, title string) error {
	// Title derivation happens after settlement, outside any request
	// scope; resolve the owner so the repository's scoped update applies.
	chat, err := r.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	return r.chats.UpdateTitle(ctx, chatID, chat.UserID, title)
}
