package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// CheckUserResult tells the client that the handle may set its password
type CheckUserResult struct {
	Handle  string `json:"handle"`
	IsAdmin bool   `json:"isAdmin"`
}

// AuthService handles signup and login for pre-registered users
type AuthService struct {
	users  *UserService
	gate   PhaseAuthorizer
	tokens *jwt.TokenService
}

// NewAuthService creates a new AuthService
func NewAuthService(users *UserService, gate PhaseAuthorizer, tokens *jwt.TokenService) *AuthService {
	return &AuthService{
		users:  users,
		gate:   gate,
		tokens: tokens,
	}
}

// CheckUser reports whether handle may set its password now
func (s *AuthService) CheckUser(ctx context.Context, handle string) (*CheckUserResult, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if err := s.passwordCreationAllowed(ctx, user); err != nil {
		return nil, err
	}
	if user.HasSetPassword {
		return nil, invalid("handle", "a password is already set, please log in")
	}
	return &CheckUserResult{Handle: user.Handle, IsAdmin: user.IsAdmin}, nil
}

// Signup sets the first password of a pre-registered user and logs them in
func (s *AuthService) Signup(ctx context.Context, handle, password string) (*models.AuthResponse, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if err := s.passwordCreationAllowed(ctx, user); err != nil {
		return nil, err
	}
	if user.HasSetPassword {
		return nil, invalid("handle", "a password is already set, please log in")
	}
	if err := s.users.SetPassword(ctx, user, password); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login checks the credentials and issues a token
func (s *AuthService) Login(ctx context.Context, handle, password string) (*models.AuthResponse, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.HasSetPassword {
		return nil, invalid("password", "you need to set your password first")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return s.issue(user)
}

// Authenticate turns a token into the request principal
func (s *AuthService) Authenticate(token string) (*models.CurrentUser, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return &models.CurrentUser{ID: claims.Subject, Handle: claims.Handle, IsAdmin: claims.IsAdmin}, nil
}

func (s *AuthService) passwordCreationAllowed(ctx context.Context, user *models.User) error {
	if user.IsAdmin {
		return nil
	}
	settings, err := s.gate.Current(ctx)
	if err != nil {
		return err
	}
	if settings.Phase == models.PhaseChoosingCategories {
		return ErrPasswordCreationNotAvailable
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID.Hex(), user.Handle, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
