package message

import (
	"context"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
)

// MessageRepository handles chat message data operations. Writes are
// append-only: messages are never mutated once stored.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error)
	FindLastByChatID(ctx context.Context, chatID uint) (*domain.Message, error)
	CountByChatIDAndRole(ctx context.Context, chatID uint, role string) (int64, error)
}
