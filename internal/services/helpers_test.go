package services

import (
	"context"
	"testing"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/logging"
	"github.com/YasminCastro/malucas-awards-v2/internal/metrics"
	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories/memory"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"github.com/YasminCastro/malucas-awards-v2/pkg/jwt"
	"github.com/stretchr/testify/require"
)

// stores are shared by every instance of a test deployment
type stores struct {
	categories  *memory.CategoryRepository
	votes       *memory.VoteRepository
	settings    *memory.SettingsRepository
	users       *memory.UserRepository
	suggestions *memory.CategorySuggestionRepository
}

// instance is one process: its own cache and services over the shared stores
type instance struct {
	*stores
	ctx         context.Context
	cache       *cache.Cache
	metrics     *metrics.Metrics
	gate        *PhaseGate
	ledger      *VoteService
	results     *ResultsService
	categorySvc *CategoryService
	userSvc     *UserService
	settingsSvc *SettingsService
	suggestSvc  *SuggestionService
	auth        *AuthService
}

func newStores() *stores {
	return &stores{
		categories:  memory.NewCategoryRepository(),
		votes:       memory.NewVoteRepository(),
		settings:    memory.NewSettingsRepository(),
		users:       memory.NewUserRepository(),
		suggestions: memory.NewCategorySuggestionRepository(),
	}
}

func newTestInstance(t *testing.T) *instance {
	t.Helper()
	return newInstanceOn(t, newStores())
}

func newInstanceOn(t *testing.T, s *stores) *instance {
	t.Helper()
	log := logging.Discard()
	m := metrics.New()
	c := cache.New(cache.WithObserver(m))
	tokens, err := jwt.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	gate := NewPhaseGate(s.settings, c, time.Minute, m)
	users := NewUserService(s.users, c, 5*time.Minute, log)
	return &instance{
		stores:      s,
		ctx:         context.Background(),
		cache:       c,
		metrics:     m,
		gate:        gate,
		ledger:      NewVoteService(s.votes, c, log, m),
		results:     NewResultsService(s.votes, s.categories, c, 30*time.Second),
		categorySvc: NewCategoryService(s.categories, gate, c, 2*time.Minute, log),
		userSvc:     users,
		settingsSvc: NewSettingsService(gate),
		suggestSvc:  NewSuggestionService(s.suggestions, c, time.Minute),
		auth:        NewAuthService(users, gate, tokens),
	}
}

func (in *instance) mustCategory(t *testing.T, name string, handles ...string) *models.Category {
	t.Helper()
	participants := make([]models.Participant, len(handles))
	for i, h := range handles {
		participants[i] = models.Participant{Handle: h}
	}
	c, err := in.categorySvc.Create(in.ctx, models.CategoryRequest{Name: &name, Participants: &participants})
	require.NoError(t, err)
	return c
}

func (in *instance) mustPhase(t *testing.T, phase models.VotingPhase) {
	t.Helper()
	_, err := in.gate.SetPhase(in.ctx, phase, "admin")
	require.NoError(t, err)
}

func (in *instance) knownCategories(t *testing.T) []*models.Category {
	t.Helper()
	categories, err := in.categorySvc.List(in.ctx)
	require.NoError(t, err)
	return categories
}
