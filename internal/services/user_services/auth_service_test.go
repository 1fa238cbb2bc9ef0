// File: internal/services/user_services/auth_service_test.go
package user_services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
)

type fakeUserRepo struct {
	users  map[uint]*domain.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*domain.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	stored := *u
	stored.ID = f.nextID
	f.nextID++
	f.users[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

const testSecret = "test-secret-key-for-signing"

func TestRegister_CreatesUserWithHashedPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, noopLogger{})

	created, err := svc.Register(context.Background(), "writer_01", "Writer@Example.com", "correct horse battery")

	require.NoError(t, err)
	assert.Equal(t, "writer_01", created.Username)
	assert.Equal(t, "writer@example.com", created.Email)
	assert.NotEqual(t, "correct horse battery", created.Password)
	require.NoError(t, created.ValidatePassword("correct horse battery"))
}

func TestRegister_RejectsBadInput(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, noopLogger{})

	cases := []struct {
		name                      string
		username, email, password string
	}{
		{"short username", "ab", "a@b.com", "longenough"},
		{"bad username chars", "has space", "a@b.com", "longenough"},
		{"bad email", "writer_01", "not-an-email", "longenough"},
		{"short password", "writer_01", "a@b.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.username, tc.email, tc.password)
			assert.Error(t, err)
		})
	}
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, noopLogger{})
	_, err := svc.Register(context.Background(), "writer_01", "a@b.com", "longenough")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "writer_01", "other@b.com", "longenough")
	assert.Error(t, err)

	_, err = svc.Register(context.Background(), "writer_02", "a@b.com", "longenough")
	assert.Error(t, err)
}

func TestLogin_RoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, noopLogger{})
	registered, err := svc.Register(context.Background(), "writer_01", "a@b.com", "longenough")
	require.NoError(t, err)

	loggedIn, token, err := svc.Login(context.Background(), "writer_01", "longenough")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)
	require.NotEmpty(t, token)

	userID, err := svc.ValidateJWTToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
}

func TestLogin_AcceptsEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, noopLogger{})
	_, err := svc.Register(context.Background(), "writer_01", "a@b.com", "longenough")
	require.NoError(t, err)

	_, token, err := svc.Login(context.Background(), "a@b.com", "longenough")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testSecret, noopLogger{})
	_, err := svc.Register(context.Background(), "writer_01", "a@b.com", "longenough")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "writer_01", "wrongpassword")

	assert.EqualError(t, err, "invalid credentials")
}

func TestValidateJWTToken_RejectsGarbage(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testSecret, noopLogger{})

	_, err := svc.ValidateJWTToken("not.a.token")
	assert.Error(t, err)

	_, err = svc.ValidateJWTToken("")
	assert.Error(t, err)
}
