// File: internal/domain/post.go
package domain

import "time"

// Post is a published or draft blog entry. The slug is derived from the
// title once, at creation time, and is never recomputed afterwards even if
// the title changes.
type Post struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Subtitle  string    `json:"subtitle" gorm:"size:300"`
	Author    string    `json:"author" gorm:"size:100;not null"` // display name shown on the post
	Category  string    `json:"category" gorm:"size:50;not null"`
	Image     string    `json:"image"` // cover image URL
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
