// File: internal/services/blog/service.go
package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
	"github.com/inkwell-blog/go-inkwell/internal/repository/post"
	"github.com/inkwell-blog/go-inkwell/internal/services/slug"
)

// Logger defines the logging interface used by the blog service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// PostInput carries the writable fields of a post through create and
// update.
type PostInput struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// Service orchestrates post CRUD around the slug engine and the post
// repository.
type Service struct {
	config   *Config
	posts    post.PostRepository
	renderer *Renderer
	logger   Logger
}

func NewService(config *Config, posts post.PostRepository, logger Logger) (*Service, error) {
	if posts == nil {
		return nil, NewValidationError("constructor", "post repository is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewValidationError("config", err.Error())
	}
	return &Service{
		config:   config,
		posts:    posts,
		renderer: NewRenderer(),
		logger:   logger,
	}, nil
}

// CreatePost validates the input, derives a unique slug from the title, and
// inserts the post. The insert's unique constraint is the authoritative
// uniqueness check: on a duplicate-key conflict (a concurrent create won
// the race) the slug is re-resolved and the insert retried once.
func (s *Service) CreatePost(ctx context.Context, authorID uint, in PostInput) (*domain.Post, error) {
	if authorID == 0 {
		return nil, NewValidationError("create_post", "author ID is required")
	}
	normalized, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	candidate := slug.GenerateWithOptions(normalized.Title, slug.Options{
		MaxLength: s.config.SlugMaxLength,
		Separator: slug.DefaultSeparator,
	})

	finalSlug, err := slug.ResolveUnique(ctx, candidate, s.posts.ExistsBySlug)
	if err != nil {
		// Fail closed: accepting a possibly-duplicate slug is worse than
		// failing the request.
		return nil, NewSlugError("create_post", "could not resolve unique slug", err)
	}

	newPost := s.buildPost(authorID, finalSlug, normalized)
	created, err := s.posts.Create(ctx, newPost)
	if errors.Is(err, post.ErrSlugTaken) {
		s.logger.Warn("slug conflict on insert, re-resolving", "slug", finalSlug, "author_id", authorID)
		finalSlug, err = slug.ResolveUnique(ctx, candidate, s.posts.ExistsBySlug)
		if err != nil {
			return nil, NewSlugError("create_post", "could not re-resolve slug after conflict", err)
		}
		created, err = s.posts.Create(ctx, s.buildPost(authorID, finalSlug, normalized))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("post created", "post_id", created.ID, "slug", created.Slug, "author_id", authorID)
	return created, nil
}

// UpdatePost validates and stores changed fields for the author's own post.
// The slug is never recomputed, even when the title changes.
func (s *Service) UpdatePost(ctx context.Context, authorID, postID uint, in PostInput) (*domain.Post, error) {
	if authorID == 0 || postID == 0 {
		return nil, NewValidationError("update_post", "post ID and author ID are required")
	}
	normalized, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.posts.Update(ctx, &domain.Post{
		ID:       postID,
		AuthorID: authorID,
		Title:    normalized.Title,
		Subtitle: normalized.Subtitle,
		Author:   normalized.Author,
		Category: normalized.Category,
		Image:    normalized.Image,
		Content:  normalized.Content,
	})
	if err != nil {
		if errors.Is(err, post.ErrUnauthorizedAccess) {
			return nil, NewNotFoundError("update_post", postID)
		}
		return nil, err
	}

	return updated, nil
}

func (s *Service) DeletePost(ctx context.Context, authorID, postID uint) error {
	if authorID == 0 || postID == 0 {
		return NewValidationError("delete_post", "post ID and author ID are required")
	}
	if err := s.posts.Delete(ctx, postID, authorID); err != nil {
		if errors.Is(err, post.ErrUnauthorizedAccess) {
			return NewNotFoundError("delete_post", postID)
		}
		return err
	}
	return nil
}

// GetPostBySlug serves the public detail view: the post plus its rendered
// HTML body. No authentication required.
func (s *Service) GetPostBySlug(ctx context.Context, slugValue string) (*domain.Post, string, error) {
	found, err := s.posts.FindBySlug(ctx, slugValue)
	if err != nil {
		if errors.Is(err, post.ErrPostNotFound) {
			return nil, "", NewNotFoundError("get_post_by_slug", 0)
		}
		return nil, "", err
	}

	rendered, err := s.renderer.Render(found.Content)
	if err != nil {
		s.logger.Error("markdown rendering failed", "post_id", found.ID, "error", err)
		rendered = ""
	}
	return found, rendered, nil
}

// GetPostByID loads the author's own post for editing.
func (s *Service) GetPostByID(ctx context.Context, authorID, postID uint) (*domain.Post, error) {
	found, err := s.posts.FindByIDAndAuthor(ctx, postID, authorID)
	if err != nil {
		if errors.Is(err, post.ErrPostNotFound) {
			return nil, NewNotFoundError("get_post_by_id", postID)
		}
		return nil, err
	}
	return found, nil
}

func (s *Service) ListAuthorPosts(ctx context.Context, authorID uint, page, limit int) ([]domain.Post, int64, error) {
	limit, offset := s.pageBounds(page, limit)
	return s.posts.FindByAuthorWithPagination(ctx, authorID, limit, offset)
}

func (s *Service) ListPublicPosts(ctx context.Context, category string, page, limit int) ([]domain.Post, int64, error) {
	limit, offset := s.pageBounds(page, limit)
	return s.posts.FindPublicWithPagination(ctx, category, limit, offset)
}

// FeaturedPosts returns the latest posts for the home page.
func (s *Service) FeaturedPosts(ctx context.Context) ([]domain.Post, error) {
	return s.posts.FindLatest(ctx, s.config.FeaturedCount)
}

func (s *Service) pageBounds(page, limit int) (int, int) {
	if limit <= 0 {
		limit = s.config.DefaultPageSize
	}
	if limit > s.config.MaxPageSize {
		limit = s.config.MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func (s *Service) buildPost(authorID uint, slugValue string, in PostInput) *domain.Post {
	return &domain.Post{
		AuthorID: authorID,
		Slug:     slugValue,
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Author:   in.Author,
		Category: in.Category,
		Image:    in.Image,
		Content:  in.Content,
	}
}

func (s *Service) validateInput(in PostInput) (PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Category = strings.TrimSpace(in.Category)

	switch {
	case in.Title == "":
		return in, NewValidationError("validate", "title cannot be empty")
	case len(in.Title) > s.config.TitleMaxLen:
		return in, NewValidationError("validate", "title is too long")
	case len(in.Subtitle) > s.config.SubtitleMaxLen:
		return in, NewValidationError("validate", "subtitle is too long")
	case strings.TrimSpace(in.Content) == "":
		return in, NewValidationError("validate", "content cannot be empty")
	case in.Author == "":
		return in, NewValidationError("validate", "author name cannot be empty")
	case len(in.Author) > s.config.AuthorMaxLen:
		return in, NewValidationError("validate", "author name is too long")
	}

	if in.Category == "" {
		in.Category = s.config.DefaultCategory
	}
	return in, nil
}
