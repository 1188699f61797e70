package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository keeps categories in a map guarded by a mutex
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[primitive.ObjectID]*models.Category
}

// NewCategoryRepository creates an empty CategoryRepository
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[primitive.ObjectID]*models.Category)}
}

func copyCategory(c *models.Category) *models.Category {
	out := *c
	out.Participants = append([]models.Participant{}, c.Participants...)
	return &out
}

func (r *CategoryRepository) nameTaken(name string, except primitive.ObjectID) bool {
	for id, c := range r.categories {
		if id != except && utils.SameName(c.Name, name) {
			return true
		}
	}
	return false
}

// Create stores a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(category.Name, primitive.NilObjectID) {
		return repositories.ErrDuplicate
	}
	category.ID = primitive.NewObjectID()
	category.CreatedAt = time.Now()
	if category.Participants == nil {
		category.Participants = []models.Participant{}
	}
	r.categories[category.ID] = copyCategory(category)
	return nil
}

// FindByID returns a category by ID
func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyCategory(c), nil
}

// FindAll returns every category in creation order
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, copyCategory(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

// Update overwrites name and participants of a stored category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.categories[category.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.nameTaken(category.Name, category.ID) {
		return repositories.ErrDuplicate
	}
	category.UpdatedAt = time.Now()
	category.CreatedAt = stored.CreatedAt
	r.categories[category.ID] = copyCategory(category)
	return nil
}

// Delete removes a category
func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}
