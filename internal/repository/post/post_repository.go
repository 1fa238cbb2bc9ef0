// File: internal/repository/post/post_repository.go
package post

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
)

var (
	ErrPostNotFound       = errors.New("post not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to post")

	// ErrSlugTaken surfaces a unique-constraint conflict on the slug
	// column. The insert is the authoritative uniqueness check; callers
	// re-resolve the slug and retry once on this error.
	ErrSlugTaken = errors.New("slug already taken")
)

type gormPostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

// Create inserts a post. A duplicate slug, including one created by a
// concurrent insert that raced the existence check, comes back as
// ErrSlugTaken.
func (r *gormPostRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := r.validatePostInput(post); err != nil {
		log.Printf("[PostRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(post).Error
	if err != nil {
		if isDuplicateKeyError(err) {
			log.Printf("[PostRepository] Slug conflict on create for author ID %d", post.AuthorID)
			return nil, ErrSlugTaken
		}
		log.Printf("[PostRepository] Database error during post creation for author ID %d: %v", post.AuthorID, err)
		return nil, errors.New("database error creating post")
	}

	log.Printf("[PostRepository] Post created successfully with ID: %d slug: %s", post.ID, post.Slug)
	return post, nil
}

// Update persists title/content changes for the author's own post. The slug
// column is deliberately left out: slugs never change after creation.
func (r *gormPostRepository) Update(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post == nil || post.ID == 0 || post.AuthorID == 0 {
		return nil, errors.New("invalid post or author ID")
	}
	if err := r.validatePostInput(post); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ? AND author_id = ?", post.ID, post.AuthorID).
		Updates(map[string]interface{}{
			"title":    post.Title,
			"subtitle": post.Subtitle,
			"author":   post.Author,
			"category": post.Category,
			"image":    post.Image,
			"content":  post.Content,
		})

	if result.Error != nil {
		log.Printf("[PostRepository] Database error updating post ID %d: %v", post.ID, result.Error)
		return nil, errors.New("database error updating post")
	}
	if result.RowsAffected == 0 {
		return nil, ErrUnauthorizedAccess
	}

	return r.FindByID(ctx, post.ID)
}

func (r *gormPostRepository) Delete(ctx context.Context, postID, authorID uint) error {
	if postID == 0 || authorID == 0 {
		return errors.New("invalid post ID or author ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", postID, authorID).
		Delete(&domain.Post{})

	if result.Error != nil {
		log.Printf("[PostRepository] Database error deleting post ID %d for author ID %d: %v", postID, authorID, result.Error)
		return errors.New("database error deleting post")
	}
	if result.RowsAffected == 0 {
		return ErrUnauthorizedAccess
	}

	log.Printf("[PostRepository] Post deleted successfully: ID %d for author %d", postID, authorID)
	return nil
}

func (r *gormPostRepository) FindByID(ctx context.Context, postID uint) (*domain.Post, error) {
	if postID == 0 {
		return nil, errors.New("invalid post ID")
	}

	var post domain.Post
	err := r.db.WithContext(ctx).First(&post, postID).Error
	return r.handleFindError(err, &post, "FindByID")
}

func (r *gormPostRepository) FindByIDAndAuthor(ctx context.Context, postID, authorID uint) (*domain.Post, error) {
	if postID == 0 || authorID == 0 {
		return nil, errors.New("invalid post ID or author ID")
	}

	var post domain.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", postID, authorID).
		First(&post).Error
	return r.handleFindError(err, &post, "FindByIDAndAuthor")
}

func (r *gormPostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, errors.New("invalid slug")
	}

	var post domain.Post
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	return r.handleFindError(err, &post, "FindBySlug")
}

// ExistsBySlug checks slug availability without loading the row. It is the
// existence predicate handed to the slug resolver.
func (r *gormPostRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	if slug == "" {
		return false, errors.New("invalid slug")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Post{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		log.Printf("[PostRepository] Database error checking slug existence for %q: %v", slug, err)
		return false, errors.New("database error checking slug existence")
	}

	return count > 0, nil
}

// FindByAuthorWithPagination loads one page of the author's posts, newest
// first, with the total count.
func (r *gormPostRepository) FindByAuthorWithPagination(ctx context.Context, authorID uint, limit, offset int) ([]domain.Post, int64, error) {
	if authorID == 0 {
		return nil, 0, errors.New("invalid author ID")
	}
	if limit <= 0 || limit > 100 {
		return nil, 0, errors.New("invalid limit: must be between 1 and 100")
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	var posts []domain.Post
	var total int64

	if err := r.db.WithContext(ctx).Model(&domain.Post{}).Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		log.Printf("[PostRepository] Database error counting posts for author ID %d: %v", authorID, err)
		return nil, 0, errors.New("database error counting posts")
	}

	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error

	if err != nil {
		log.Printf("[PostRepository] Database error in paginated query for author ID %d: %v", authorID, err)
		return nil, 0, errors.New("database error retrieving paginated posts")
	}

	return posts, total, nil
}

// FindPublicWithPagination loads one page of all posts for public browsing,
// newest first, optionally filtered to a category.
func (r *gormPostRepository) FindPublicWithPagination(ctx context.Context, category string, limit, offset int) ([]domain.Post, int64, error) {
	if limit <= 0 || limit > 100 {
		return nil, 0, errors.New("invalid limit: must be between 1 and 100")
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	query := r.db.WithContext(ctx).Model(&domain.Post{})
	if category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("[PostRepository] Database error counting public posts: %v", err)
		return nil, 0, errors.New("database error counting posts")
	}

	var posts []domain.Post
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error

	if err != nil {
		log.Printf("[PostRepository] Database error in public paginated query: %v", err)
		return nil, 0, errors.New("database error retrieving paginated posts")
	}

	return posts, total, nil
}

// FindLatest returns the most recent posts for the featured section.
func (r *gormPostRepository) FindLatest(ctx context.Context, limit int) ([]domain.Post, error) {
	if limit <= 0 || limit > 50 {
		limit = 3
	}

	var posts []domain.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error

	if err != nil {
		log.Printf("[PostRepository] Database error finding latest posts: %v", err)
		return nil, errors.New("database error finding latest posts")
	}

	return posts, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormPostRepository) validatePostInput(post *domain.Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}
	if post.AuthorID == 0 {
		return errors.New("author ID is required")
	}
	if strings.TrimSpace(post.Title) == "" || len(post.Title) > 200 {
		return errors.New("title must be between 1 and 200 characters")
	}
	if strings.TrimSpace(post.Content) == "" {
		return errors.New("content is required")
	}
	if post.Slug == "" && post.ID == 0 {
		return errors.New("slug is required")
	}
	return nil
}

// isDuplicateKeyError recognizes unique-constraint violations from both
// supported drivers (sqlite and postgres).
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// ===== ERROR HANDLING HELPERS =====

func (r *gormPostRepository) handleFindError(err error, post *domain.Post, operation string) (*domain.Post, error) {
	if err == nil {
		return post, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}

	log.Printf("[PostRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
