package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/internal/utils"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionService collects category ideas from the public
type SuggestionService struct {
	repo  repositories.CategorySuggestionRepository
	cache *cache.Cache
	ttl   time.Duration
}

// NewSuggestionService creates a new SuggestionService
func NewSuggestionService(repo repositories.CategorySuggestionRepository, c *cache.Cache, ttl time.Duration) *SuggestionService {
	return &SuggestionService{repo: repo, cache: c, ttl: ttl}
}

// List returns every suggestion through the cache, newest first
func (s *SuggestionService) List(ctx context.Context) ([]*models.CategorySuggestion, error) {
	suggestions, err := cache.GetOrLoad(ctx, s.cache, suggestionsKey, s.ttl, s.repo.FindAll)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestions: %w", err)
	}
	out := make([]*models.CategorySuggestion, len(suggestions))
	for i, sg := range suggestions {
		cp := *sg
		cp.Participants = append([]string{}, sg.Participants...)
		out[i] = &cp
	}
	return out, nil
}

// ListFresh bypasses the cache, for the admin review screen
func (s *SuggestionService) ListFresh(ctx context.Context) ([]*models.CategorySuggestion, error) {
	return s.repo.FindAll(ctx)
}

// Create stores a new pending suggestion
func (s *SuggestionService) Create(ctx context.Context, req models.CreateSuggestionRequest) (*models.CategorySuggestion, error) {
	suggester := strings.TrimSpace(req.SuggesterName)
	category := strings.TrimSpace(req.CategoryName)
	if suggester == "" {
		return nil, invalid("suggesterName", "suggester name is required")
	}
	if category == "" {
		return nil, invalid("categoryName", "category name is required")
	}
	suggestion := &models.CategorySuggestion{
		SuggesterName: suggester,
		CategoryName:  category,
		Participants:  utils.NormalizeHandles(req.Participants),
		Observations:  strings.TrimSpace(req.Observations),
		Status:        models.SuggestionPending,
	}
	if err := s.repo.Create(ctx, suggestion); err != nil {
		return nil, err
	}
	s.cache.Invalidate(suggestionsKey)
	return suggestion, nil
}

// AddParticipants appends handles that are not on the suggestion yet.
// Submitting only known handles is rejected.
func (s *SuggestionService) AddParticipants(ctx context.Context, id primitive.ObjectID, handles []string) (*models.CategorySuggestion, error) {
	handles = utils.NormalizeHandles(handles)
	if len(handles) == 0 {
		return nil, invalid("participants", "at least one participant is required")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(existing.Participants))
	for _, p := range existing.Participants {
		present[p] = struct{}{}
	}
	fresh := make([]string, 0, len(handles))
	for _, h := range handles {
		if _, ok := present[h]; !ok {
			fresh = append(fresh, h)
		}
	}
	if len(fresh) == 0 {
		return nil, invalid("participants", "all participants are already listed")
	}

	if err := s.repo.AddParticipants(ctx, id, fresh); err != nil {
		return nil, err
	}
	s.cache.Invalidate(suggestionsKey)
	return s.repo.FindByID(ctx, id)
}

// UpdateStatus moves a suggestion to pending, approved or rejected
func (s *SuggestionService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.SuggestionStatus) (*models.CategorySuggestion, error) {
	return s.Update(ctx, id, models.UpdateSuggestionRequest{Status: &status})
}

// Update edits a suggestion; nil fields are kept
func (s *SuggestionService) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateSuggestionRequest) (*models.CategorySuggestion, error) {
	suggestion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SuggesterName != nil {
		v := strings.TrimSpace(*req.SuggesterName)
		if v == "" {
			return nil, invalid("suggesterName", "suggester name is required")
		}
		suggestion.SuggesterName = v
	}
	if req.CategoryName != nil {
		v := strings.TrimSpace(*req.CategoryName)
		if v == "" {
			return nil, invalid("categoryName", "category name is required")
		}
		suggestion.CategoryName = v
	}
	if req.Participants != nil {
		suggestion.Participants = utils.NormalizeHandles(*req.Participants)
	}
	if req.Observations != nil {
		suggestion.Observations = strings.TrimSpace(*req.Observations)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, invalid("status", "status must be pending, approved or rejected")
		}
		suggestion.Status = *req.Status
	}

	if err := s.repo.Update(ctx, suggestion); err != nil {
		return nil, err
	}
	s.cache.Invalidate(suggestionsKey)
	return suggestion, nil
}

// Delete removes a suggestion
func (s *SuggestionService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(suggestionsKey)
	return nil
}
