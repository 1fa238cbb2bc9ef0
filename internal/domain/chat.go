// File: internal/domain/chat.go
package domain

import "time"

// Chat represents a single conversation thread with the assistant.
type Chat struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"size:200"`
	Model     string    `json:"model" gorm:"size:100;not null"` // model identifier used for completions
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
