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

var _ repositories.CategorySuggestionRepository = (*CategorySuggestionRepository)(nil)

// CategorySuggestionRepository keeps suggestions in a map
type CategorySuggestionRepository struct {
	mu          sync.RWMutex
	suggestions map[primitive.ObjectID]*models.CategorySuggestion
}

// NewCategorySuggestionRepository creates an empty CategorySuggestionRepository
func NewCategorySuggestionRepository() *CategorySuggestionRepository {
	return &CategorySuggestionRepository{suggestions: make(map[primitive.ObjectID]*models.CategorySuggestion)}
}

func copySuggestion(s *models.CategorySuggestion) *models.CategorySuggestion {
	out := *s
	out.Participants = append([]string{}, s.Participants...)
	return &out
}

// Create stores a new suggestion
func (r *CategorySuggestionRepository) Create(ctx context.Context, suggestion *models.CategorySuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	suggestion.ID = primitive.NewObjectID()
	suggestion.CreatedAt = time.Now()
	r.suggestions[suggestion.ID] = copySuggestion(suggestion)
	return nil
}

// FindByID returns a suggestion by ID
func (r *CategorySuggestionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CategorySuggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suggestions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copySuggestion(s), nil
}

// FindAll returns every suggestion, newest first
func (r *CategorySuggestionRepository) FindAll(ctx context.Context) ([]*models.CategorySuggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.CategorySuggestion, 0, len(r.suggestions))
	for _, s := range r.suggestions {
		out = append(out, copySuggestion(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

// AddParticipants appends the handles not yet present
func (r *CategorySuggestionRepository) AddParticipants(ctx context.Context, id primitive.ObjectID, handles []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, h := range handles {
		present := false
		for _, existing := range s.Participants {
			if existing == h {
				present = true
				break
			}
		}
		if !present {
			s.Participants = append(s.Participants, h)
		}
	}
	return nil
}

// Update overwrites a stored suggestion
func (r *CategorySuggestionRepository) Update(ctx context.Context, suggestion *models.CategorySuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.suggestions[suggestion.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	suggestion.CreatedAt = stored.CreatedAt
	r.suggestions[suggestion.ID] = copySuggestion(suggestion)
	return nil
}

// Delete removes a suggestion
func (r *CategorySuggestionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.suggestions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.suggestions, id)
	return nil
}
