// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create - with input validation and secure logging
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(message).Error
	if err != nil {
		// Secure logging - no conversation content exposed
		log.Printf("[MessageRepository] Database error during message creation for chat ID %d: %v", message.ChatID, err)
		return nil, errors.New("database error creating message")
	}

	log.Printf("[MessageRepository] Message created successfully with ID: %d for chat: %d", message.ID, message.ChatID)
	return message, nil
}

// FindByChatID returns the full conversation in creation order.
func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc, id asc").
		Find(&messages).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for chat ID %d: %v", chatID, err)
		return nil, errors.New("database error fetching messages")
	}

	return messages, nil
}

// FindLastByChatID returns the most recent message of a chat, or nil when
// the chat is empty.
func (r *gormMessageRepository) FindLastByChatID(ctx context.Context, chatID uint) (*domain.Message, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var message domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at desc, id desc").
		First(&message).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[MessageRepository] Database error finding last message for chat ID %d: %v", chatID, err)
		return nil, errors.New("database error fetching last message")
	}

	return &message, nil
}

// CountByChatIDAndRole counts persisted messages of one role. Used by the
// title-derivation guard, which keys off the number of user messages.
func (r *gormMessageRepository) CountByChatIDAndRole(ctx context.Context, chatID uint, role string) (int64, error) {
	if chatID == 0 {
		return 0, errors.New("invalid chat ID")
	}
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return 0, fmt.Errorf("invalid role: %q", role)
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("chat_id = ? AND role = ?", chatID, role).
		Count(&count).Error

	if err != nil {
		log.Printf("[MessageRepository] Database error counting %s messages for chat ID %d: %v", role, chatID, err)
		return 0, errors.New("database error counting messages")
	}

	return count, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ChatID == 0 {
		return errors.New("chat ID is required")
	}
	if message.Role != domain.RoleUser && message.Role != domain.RoleAssistant {
		return fmt.Errorf("invalid role: %q", message.Role)
	}
	if strings.TrimSpace(message.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}
