package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/internal/utils"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted on signup or admin reset
const MinPasswordLength = 6

// UserService handles user-related business logic
type UserService struct {
	userRepo repositories.UserRepository
	cache    *cache.Cache
	ttl      time.Duration
	log      *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, c *cache.Cache, ttl time.Duration, log *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		cache:    c,
		ttl:      ttl,
		log:      log,
	}
}

// List returns every user through the cache
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := cache.GetOrLoad(ctx, s.cache, usersKey, s.ttl, s.userRepo.FindAll)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	out := make([]*models.User, len(users))
	for i, u := range users {
		cp := *u
		out[i] = &cp
	}
	return out, nil
}

// ListPublic returns only the handles
func (s *UserService) ListPublic(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, len(users))
	for i, u := range users {
		out[i] = models.PublicUser{Handle: u.Handle}
	}
	return out, nil
}

// Get retrieves a user by ID
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// GetByHandle retrieves a user by handle, normalising it first
func (s *UserService) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	handle = utils.NormalizeHandle(handle)
	if handle == "" {
		return nil, invalid("handle", "handle is required")
	}
	return s.userRepo.FindByHandle(ctx, handle)
}

// CreatePreRegistered adds a user who still has to choose a password
func (s *UserService) CreatePreRegistered(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	handle := utils.NormalizeHandle(req.Handle)
	name := strings.TrimSpace(req.Name)
	if handle == "" {
		return nil, invalid("handle", "handle is required")
	}
	if name == "" {
		return nil, invalid("name", "name is required")
	}

	user := &models.User{Handle: handle, Name: name, IsAdmin: req.IsAdmin}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fromRepo(err)
	}
	s.cache.Invalidate(usersKey)
	s.log.InfoContext(ctx, "user pre-registered", "handle", handle, "is_admin", req.IsAdmin)
	return user, nil
}

// Update applies an admin edit. A new password is hashed and marks the password as set.
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "name cannot be empty")
		}
		user.Name = name
	}
	if req.Handle != nil {
		handle := utils.NormalizeHandle(*req.Handle)
		if handle == "" {
			return nil, invalid("handle", "handle cannot be empty")
		}
		user.Handle = handle
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.HasSetPassword != nil {
		user.HasSetPassword = *req.HasSetPassword
		if !user.HasSetPassword {
			user.PasswordHash = ""
		}
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		user.HasSetPassword = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fromRepo(err)
	}
	s.cache.Invalidate(usersKey)
	return user, nil
}

// ResetPassword clears the password so the user goes through signup again
func (s *UserService) ResetPassword(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	reset := false
	return s.Update(ctx, id, models.UpdateUserRequest{HasSetPassword: &reset})
}

// SetPassword stores the first password of a pre-registered user
func (s *UserService) SetPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.HasSetPassword = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fromRepo(err)
	}
	s.cache.Invalidate(usersKey)
	return nil
}

// Delete removes a user. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id, actingUserID primitive.ObjectID) error {
	if id == actingUserID {
		return invalid("id", "you cannot delete your own user")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(usersKey)
	s.log.InfoContext(ctx, "user deleted", "user_id", id.Hex(), "deleted_by", actingUserID.Hex())
	return nil
}

// IsAdmin re-reads the admin flag from the store
func (s *UserService) IsAdmin(ctx context.Context, id primitive.ObjectID) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", invalid("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
