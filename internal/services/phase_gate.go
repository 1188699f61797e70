package services

import (
	"context"
	"fmt"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/metrics"
	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
)

var _ PhaseAuthorizer = (*PhaseGate)(nil)

// PhaseGate guards operations by the global voting phase.
//
//	phase                 categories    vote write/edit   results
//	choosing-categories   structure     no                no
//	pre-voting            yes           no                no
//	voting                yes           yes               no
//	post-voting           yes           no                no
//	results               yes           no                yes
type PhaseGate struct {
	settingsRepo repositories.SettingsRepository
	cache        *cache.Cache
	ttl          time.Duration
	metrics      *metrics.Metrics
}

// NewPhaseGate creates a new PhaseGate
func NewPhaseGate(settingsRepo repositories.SettingsRepository, c *cache.Cache, ttl time.Duration, m *metrics.Metrics) *PhaseGate {
	return &PhaseGate{
		settingsRepo: settingsRepo,
		cache:        c,
		ttl:          ttl,
		metrics:      m,
	}
}

// Current returns the settings through the cache. The result is a copy.
func (g *PhaseGate) Current(ctx context.Context) (*models.Settings, error) {
	settings, err := cache.GetOrLoad(ctx, g.cache, settingsKey, g.ttl, g.settingsRepo.GetSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out := *settings
	return &out, nil
}

// Fresh reads the settings straight from the store
func (g *PhaseGate) Fresh(ctx context.Context) (*models.Settings, error) {
	settings, err := g.settingsRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// AuthorizeWrite allows ballot writes only while voting is open
func (g *PhaseGate) AuthorizeWrite(ctx context.Context) error {
	settings, err := g.Fresh(ctx)
	if err != nil {
		return err
	}
	if settings.Phase != models.PhaseVoting {
		return &PhaseError{Required: models.PhaseVoting, Current: settings.Phase}
	}
	return nil
}

// AuthorizeResultsRead allows public result reads only once results are published
func (g *PhaseGate) AuthorizeResultsRead(ctx context.Context) error {
	settings, err := g.Current(ctx)
	if err != nil {
		return err
	}
	if settings.Phase != models.PhaseResults {
		return &PhaseError{Required: models.PhaseResults, Current: settings.Phase}
	}
	return nil
}

// SetPhase stores the new phase. Any phase may follow any other.
func (g *PhaseGate) SetPhase(ctx context.Context, phase models.VotingPhase, updatedBy string) (*models.Settings, error) {
	settings, err := g.Fresh(ctx)
	if err != nil {
		return nil, err
	}
	settings.Phase = phase
	settings.UpdatedBy = updatedBy
	if err := g.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes the settings and drops the cached copy before returning
func (g *PhaseGate) Save(ctx context.Context, settings *models.Settings) error {
	if !settings.Phase.Valid() {
		return invalid("status", fmt.Sprintf("unknown phase %q", settings.Phase))
	}
	if err := g.settingsRepo.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	g.cache.Invalidate(settingsKey)
	g.metrics.SetPhase(settings.Phase)
	return nil
}

// PublicCategoryView reports whether participants may be shown to everyone
func PublicCategoryView(phase models.VotingPhase) (showParticipants bool) {
	return phase != models.PhaseChoosingCategories
}
