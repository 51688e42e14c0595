package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/schalkje/DiagramDesigner/internal/auth"
	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/models"
)

// RegisterInput is the payload for creating a local account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"max=255"`
}

// LoginInput is the payload for password login.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// AuthService registers and authenticates users.
type AuthService struct {
	*base
	jwt *auth.JWTService
}

// Register creates an active local account and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, Validation("Email already registered")
	} else if !storage.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.store.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, Validation("Username already taken")
	} else if !storage.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, writeErr(err, "Email or username already registered")
	}
	s.log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return s.issue(user)
}

// Login verifies the password, stamps the login time and issues a fresh
// token. Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate(in); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if storage.IsNotFound(err) {
		return nil, Unauthenticated("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, Unauthenticated("Invalid email or password")
	}
	if err := auth.ComparePassword(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, Unauthenticated("Invalid email or password")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, Unauthenticated("Account is deactivated")
	}

	now := time.Now().UTC()
	if err := s.store.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return s.issue(user)
}

// User returns the account with the given id.
func (s *AuthService) User(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User with ID %d not found", id)
	}
	return user, nil
}

// IssueToken mints a token for an existing active user without a password.
// It backs the operator token command.
func (s *AuthService) IssueToken(ctx context.Context, userID uint) (*AuthResult, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, Unauthenticated("Account is deactivated")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
