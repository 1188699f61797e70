package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository keeps users keyed by ID with a unique handle
type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

// NewUserRepository creates an empty UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

func copyUser(u *models.User) *models.User {
	out := *u
	return &out
}

func (r *UserRepository) handleTaken(handle string, except primitive.ObjectID) bool {
	for id, u := range r.users {
		if id != except && u.Handle == handle {
			return true
		}
	}
	return false
}

// Create stores a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handleTaken(user.Handle, primitive.NilObjectID) {
		return repositories.ErrDuplicate
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	r.users[user.ID] = copyUser(user)
	return nil
}

// FindByID returns a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyUser(u), nil
}

// FindByHandle returns a user by handle
func (r *UserRepository) FindByHandle(ctx context.Context, handle string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Handle == handle {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

// FindAll returns every user ordered by handle
func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

// Update overwrites a stored user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.handleTaken(user.Handle, user.ID) {
		return repositories.ErrDuplicate
	}
	user.UpdatedAt = time.Now()
	user.CreatedAt = stored.CreatedAt
	r.users[user.ID] = copyUser(user)
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}
