// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/inkwell-blog/go-inkwell/internal/auth"
	"github.com/inkwell-blog/go-inkwell/internal/domain"
	"github.com/inkwell-blog/go-inkwell/internal/repository/user"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey string
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		logger:       logger,
	}
}

// Register creates a new author account.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.validateRegistrationInput(username, email, password); err != nil {
		s.logger.Warn("registration validation failed",
			"username", username[:min(4, len(username))]+"****",
			"error", err.Error())
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.logger.Info("user registration attempt",
		"username", username[:min(4, len(username))]+"****")

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		s.logger.Error("registration uniqueness check failed", "error", err)
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if taken {
		s.logger.Warn("registration failed - username or email already exists",
			"username", username[:min(4, len(username))]+"****")
		return nil, errors.New("username or email already taken")
	}

	newUser := &domain.User{
		Username: username,
		Email:    email,
	}
	if err := newUser.HashPassword(password); err != nil {
		s.logger.Error("password hashing failed", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	createdUser, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		s.logger.Error("user creation failed",
			"error", err,
			"username", username[:min(4, len(username))]+"****")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully",
		"username", username[:min(4, len(username))]+"****",
		"user_id", createdUser.ID)

	return createdUser, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", errors.New("username and password are required")
	}

	s.logger.Info("user login attempt",
		"username", username[:min(4, len(username))]+"****")

	found, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		// Login also accepts the email address in the username field.
		found, err = s.userRepo.FindByEmail(ctx, strings.ToLower(username))
	}
	if err != nil {
		s.logger.Warn("login failed - user not found",
			"username", username[:min(4, len(username))]+"****")
		return nil, "", errors.New("invalid credentials")
	}

	if err := found.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password",
			"username", username[:min(4, len(username))]+"****",
			"user_id", found.ID)
		return nil, "", errors.New("invalid credentials")
	}

	token, err := auth.GenerateJWT(found.ID, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Error("JWT token generation failed",
			"error", err,
			"user_id", found.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful",
		"username", username[:min(4, len(username))]+"****",
		"user_id", found.ID)

	return found, token, nil
}

// ValidateJWTToken validates a JWT token and returns the user ID.
func (s *AuthService) ValidateJWTToken(tokenString string) (uint, error) {
	if tokenString == "" {
		s.logger.Warn("JWT validation attempted with empty token")
		return 0, errors.New("empty token")
	}

	userID, err := auth.ValidateToken(tokenString, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Warn("JWT token validation failed", "error", err)
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	s.logger.Debug("JWT token validated successfully", "user_id", userID)
	return userID, nil
}

func (s *AuthService) validateRegistrationInput(username, email, password string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username validation: username must be 3-20 characters, alphanumeric or underscore")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email validation: invalid email address format")
	}
	if len(password) < 8 {
		return fmt.Errorf("password validation: password must be at least 8 characters")
	}
	return nil
}
