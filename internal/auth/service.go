package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/ghostcord/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrUserNotFound is returned when deleting an unknown account.
	ErrUserNotFound = errors.New("user not found")
)

// Service is the credential store: it creates and verifies accounts and
// issues tokens for them.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new user with hashed password and returns a JWT token.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	username, err := normalizeCredentials(username, password)
	if err != nil {
		return "", err
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return "", err
	}

	// The primary key decides races between two signups for one name.
	if _, err := s.store.CreateUser(ctx, username, hashedPassword); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.issue(username)
}

// Login validates credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if err := s.Verify(ctx, username, password); err != nil {
		return "", err
	}
	return s.issue(username)
}

// Verify checks a username/password pair.
func (s *Service) Verify(ctx context.Context, username, password string) error {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("get user: %w", err)
	}

	if !passwordMatches(user.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	return nil
}

// DeleteAccount removes the user and everything that references them.
func (s *Service) DeleteAccount(ctx context.Context, username string) error {
	if err := s.store.DeleteAllUserData(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user data: %w", err)
	}
	return nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

func (s *Service) issue(username string) (string, error) {
	token, err := GenerateToken(s.jwtConfig, username)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
