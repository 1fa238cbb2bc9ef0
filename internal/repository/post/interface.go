package post

import (
	"context"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
)

// PostRepository handles blog post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) (*domain.Post, error)
	Delete(ctx context.Context, postID, authorID uint) error
	FindByID(ctx context.Context, postID uint) (*domain.Post, error)
	FindByIDAndAuthor(ctx context.Context, postID, authorID uint) (*domain.Post, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	FindByAuthorWithPagination(ctx context.Context, authorID uint, limit, offset int) ([]domain.Post, int64, error)
	FindPublicWithPagination(ctx context.Context, category string, limit, offset int) ([]domain.Post, int64, error)
	FindLatest(ctx context.Context, limit int) ([]domain.Post, error)
}
