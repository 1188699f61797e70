package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/internal/utils"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryService manages the award categories and their nominees
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	gate         PhaseAuthorizer
	cache        *cache.Cache
	ttl          time.Duration
	log          *slog.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repositories.CategoryRepository, gate PhaseAuthorizer, c *cache.Cache, ttl time.Duration, log *slog.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		gate:         gate,
		cache:        c,
		ttl:          ttl,
		log:          log,
	}
}

// List returns every category through the cache, oldest first
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := cache.GetOrLoad(ctx, s.cache, categoriesKey, s.ttl, s.categoryRepo.FindAll)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	out := make([]*models.Category, len(categories))
	for i, c := range categories {
		cp := *c
		cp.Participants = append([]models.Participant{}, c.Participants...)
		out[i] = &cp
	}
	return out, nil
}

// ListFresh bypasses the cache, for admin screens
func (s *CategoryService) ListFresh(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

// ListPublic returns the categories as everyone may see them. While categories
// are still being chosen only their names are shown.
func (s *CategoryService) ListPublic(ctx context.Context) ([]*models.Category, error) {
	settings, err := s.gate.Current(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if PublicCategoryView(settings.Phase) {
		return categories, nil
	}
	for i, c := range categories {
		categories[i] = c.StructureOnly()
	}
	return categories, nil
}

// Get returns one category
func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// Create adds a category. The name must be unique ignoring case.
func (s *CategoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, invalid("name", "category name is required")
	}
	category := &models.Category{Name: strings.TrimSpace(*req.Name)}
	if req.Participants != nil {
		category.Participants = normalizeParticipants(*req.Participants)
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fromRepo(err)
	}
	s.cache.Invalidate(categoriesKey)
	s.log.InfoContext(ctx, "category created", "category_id", category.ID.Hex(), "name", category.Name)
	return category, nil
}

// Update changes the name and/or participants of a category
func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, req models.CategoryRequest) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "category name cannot be empty")
		}
		category.Name = name
	}
	if req.Participants != nil {
		category.Participants = normalizeParticipants(*req.Participants)
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fromRepo(err)
	}
	s.cache.Invalidate(categoriesKey, resultsKey(id))
	return category, nil
}

// Delete removes a category. Votes already cast for it stay in the ledger but
// no longer show up in results.
func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(categoriesKey, resultsKey(id))
	s.log.InfoContext(ctx, "category deleted", "category_id", id.Hex())
	return nil
}

func normalizeParticipants(in []models.Participant) []models.Participant {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Participant, 0, len(in))
	for _, p := range in {
		handle := utils.NormalizeHandle(p.Handle)
		if handle == "" {
			continue
		}
		if _, dup := seen[handle]; dup {
			continue
		}
		seen[handle] = struct{}{}
		out = append(out, models.Participant{Handle: handle, ImageRef: strings.TrimSpace(p.ImageRef)})
	}
	return out
}
