// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"fmt"

	"github.com/inkwell-blog/go-inkwell/internal/domain"
	"github.com/inkwell-blog/go-inkwell/internal/repository/user"
)

// UserService composes the user-facing account services.
type UserService struct {
	*AuthService

	userRepo user.UserRepository
}

func NewUserService(userRepo user.UserRepository, jwtSecret string, logger Logger) *UserService {
	return &UserService{
		AuthService: NewAuthService(userRepo, jwtSecret, logger),
		userRepo:    userRepo,
	}
}

// GetProfile loads the account backing an authenticated session.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	found, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return found, nil
}
