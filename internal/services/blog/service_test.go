// File: internal/services/blog/service_test.go
package blog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
	"github.com/inkwell-blog/go-inkwell/internal/repository/post"
)

type fakePostRepo struct {
	posts      map[string]*domain.Post // keyed by slug
	nextID     uint
	createErrs []error // consumed front-to-back before the map check
	existsErr  error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*domain.Post{}, nextID: 1}
}

func (f *fakePostRepo) Create(_ context.Context, p *domain.Post) (*domain.Post, error) {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if _, taken := f.posts[p.Slug]; taken {
		return nil, post.ErrSlugTaken
	}
	stored := *p
	stored.ID = f.nextID
	f.nextID++
	f.posts[stored.Slug] = &stored
	return &stored, nil
}

func (f *fakePostRepo) Update(_ context.Context, p *domain.Post) (*domain.Post, error) {
	for _, existing := range f.posts {
		if existing.ID == p.ID {
			if existing.AuthorID != p.AuthorID {
				return nil, post.ErrUnauthorizedAccess
			}
			existing.Title = p.Title
			existing.Subtitle = p.Subtitle
			existing.Author = p.Author
			existing.Category = p.Category
			existing.Image = p.Image
			existing.Content = p.Content
			return existing, nil
		}
	}
	return nil, post.ErrPostNotFound
}

func (f *fakePostRepo) Delete(_ context.Context, postID, authorID uint) error {
	for slugKey, existing := range f.posts {
		if existing.ID == postID {
			if existing.AuthorID != authorID {
				return post.ErrUnauthorizedAccess
			}
			delete(f.posts, slugKey)
			return nil
		}
	}
	return post.ErrPostNotFound
}

func (f *fakePostRepo) FindByID(_ context.Context, postID uint) (*domain.Post, error) {
	for _, existing := range f.posts {
		if existing.ID == postID {
			return existing, nil
		}
	}
	return nil, post.ErrPostNotFound
}

func (f *fakePostRepo) FindByIDAndAuthor(_ context.Context, postID, authorID uint) (*domain.Post, error) {
	for _, existing := range f.posts {
		if existing.ID == postID && existing.AuthorID == authorID {
			return existing, nil
		}
	}
	return nil, post.ErrPostNotFound
}

func (f *fakePostRepo) FindBySlug(_ context.Context, slug string) (*domain.Post, error) {
	if existing, ok := f.posts[slug]; ok {
		return existing, nil
	}
	return nil, post.ErrPostNotFound
}

func (f *fakePostRepo) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.posts[slug]
	return ok, nil
}

func (f *fakePostRepo) FindByAuthorWithPagination(_ context.Context, authorID uint, limit, offset int) ([]domain.Post, int64, error) {
	var out []domain.Post
	for _, existing := range f.posts {
		if existing.AuthorID == authorID {
			out = append(out, *existing)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) FindPublicWithPagination(_ context.Context, category string, limit, offset int) ([]domain.Post, int64, error) {
	var out []domain.Post
	for _, existing := range f.posts {
		if category == "" || existing.Category == category {
			out = append(out, *existing)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) FindLatest(_ context.Context, limit int) ([]domain.Post, error) {
	var out []domain.Post
	for _, existing := range f.posts {
		out = append(out, *existing)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Warn(string, ...interface{})  {}

func newTestService(t *testing.T, repo post.PostRepository) *Service {
	t.Helper()
	svc, err := NewService(DefaultConfig(), repo, testLogger{})
	require.NoError(t, err)
	return svc
}

func validInput() PostInput {
	return PostInput{
		Title:    "Understanding Goroutine Scheduling",
		Subtitle: "A walk through the runtime",
		Content:  "## Scheduling\n\nGoroutines are multiplexed onto OS threads.",
		Author:   "Dana Reyes",
		Category: "engineering",
	}
}

func TestCreatePost_DerivesSlugFromTitle(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)

	created, err := svc.CreatePost(context.Background(), 1, validInput())

	require.NoError(t, err)
	assert.Equal(t, "understanding-goroutine-scheduling", created.Slug)
	assert.NotZero(t, created.ID)
}

func TestCreatePost_ResolvesSlugCollision(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)

	first, err := svc.CreatePost(context.Background(), 1, validInput())
	require.NoError(t, err)
	second, err := svc.CreatePost(context.Background(), 2, validInput())
	require.NoError(t, err)

	assert.Equal(t, "understanding-goroutine-scheduling", first.Slug)
	assert.Equal(t, "understanding-goroutine-scheduling-1", second.Slug)
}

func TestCreatePost_RetriesOnceWhenInsertLosesRace(t *testing.T) {
	repo := newFakePostRepo()
	// First insert hits the unique constraint even though the existence
	// probe saw the slug as free (concurrent writer).
	repo.createErrs = []error{post.ErrSlugTaken}
	svc := newTestService(t, repo)

	created, err := svc.CreatePost(context.Background(), 1, validInput())

	require.NoError(t, err)
	assert.Equal(t, "understanding-goroutine-scheduling", created.Slug)
}

func TestCreatePost_FailsClosedOnExistsError(t *testing.T) {
	repo := newFakePostRepo()
	repo.existsErr = errors.New("connection reset")
	svc := newTestService(t, repo)

	_, err := svc.CreatePost(context.Background(), 1, validInput())

	require.Error(t, err)
	var blogErr *BlogError
	require.ErrorAs(t, err, &blogErr)
	assert.Equal(t, ErrTypeSlug, blogErr.Type)
	assert.Empty(t, repo.posts)
}

func TestCreatePost_ValidatesInput(t *testing.T) {
	svc := newTestService(t, newFakePostRepo())

	cases := []struct {
		name   string
		mutate func(*PostInput)
	}{
		{"empty title", func(in *PostInput) { in.Title = "   " }},
		{"title too long", func(in *PostInput) { in.Title = strings.Repeat("a", 201) }},
		{"empty content", func(in *PostInput) { in.Content = "\n\t" }},
		{"empty author", func(in *PostInput) { in.Author = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.CreatePost(context.Background(), 1, in)
			var blogErr *BlogError
			require.ErrorAs(t, err, &blogErr)
			assert.Equal(t, ErrTypeValidation, blogErr.Type)
		})
	}
}

func TestCreatePost_DefaultsCategory(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	in := validInput()
	in.Category = ""

	created, err := svc.CreatePost(context.Background(), 1, in)

	require.NoError(t, err)
	assert.Equal(t, "design", created.Category)
}

func TestUpdatePost_KeepsSlugWhenTitleChanges(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	created, err := svc.CreatePost(context.Background(), 1, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "A Completely Different Title"
	updated, err := svc.UpdatePost(context.Background(), 1, created.ID, in)

	require.NoError(t, err)
	assert.Equal(t, "A Completely Different Title", updated.Title)
	assert.Equal(t, created.Slug, updated.Slug)
}

func TestUpdatePost_RejectsForeignPost(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	created, err := svc.CreatePost(context.Background(), 1, validInput())
	require.NoError(t, err)

	_, err = svc.UpdatePost(context.Background(), 2, created.ID, validInput())

	var blogErr *BlogError
	require.ErrorAs(t, err, &blogErr)
	assert.Equal(t, ErrTypeNotFound, blogErr.Type)
}

func TestDeletePost_RemovesOwnPostOnly(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	created, err := svc.CreatePost(context.Background(), 1, validInput())
	require.NoError(t, err)

	err = svc.DeletePost(context.Background(), 2, created.ID)
	var blogErr *BlogError
	require.ErrorAs(t, err, &blogErr)
	assert.Equal(t, ErrTypeNotFound, blogErr.Type)

	require.NoError(t, svc.DeletePost(context.Background(), 1, created.ID))
	assert.Empty(t, repo.posts)
}

func TestGetPostBySlug_RendersMarkdown(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	_, err := svc.CreatePost(context.Background(), 1, validInput())
	require.NoError(t, err)

	found, html, err := svc.GetPostBySlug(context.Background(), "understanding-goroutine-scheduling")

	require.NoError(t, err)
	assert.Equal(t, "Understanding Goroutine Scheduling", found.Title)
	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "Scheduling")
}

func TestGetPostBySlug_NotFound(t *testing.T) {
	svc := newTestService(t, newFakePostRepo())

	_, _, err := svc.GetPostBySlug(context.Background(), "missing")

	var blogErr *BlogError
	require.ErrorAs(t, err, &blogErr)
	assert.Equal(t, ErrTypeNotFound, blogErr.Type)
}

func TestListPublicPosts_FiltersByCategory(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)

	engineering := validInput()
	_, err := svc.CreatePost(context.Background(), 1, engineering)
	require.NoError(t, err)

	design := validInput()
	design.Title = "On Typography"
	design.Category = "design"
	_, err = svc.CreatePost(context.Background(), 1, design)
	require.NoError(t, err)

	posts, total, err := svc.ListPublicPosts(context.Background(), "design", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, "On Typography", posts[0].Title)
}

func TestRenderer_EscapesRawHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("hello <script>alert(1)</script>")

	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}
