package memory

import (
	"context"
	"sync"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
)

var _ repositories.SettingsRepository = (*SettingsRepository)(nil)

// SettingsRepository holds the settings singleton
type SettingsRepository struct {
	mu       sync.RWMutex
	settings *models.Settings
}

// NewSettingsRepository creates a SettingsRepository with no stored settings
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

func copySettings(s *models.Settings) *models.Settings {
	out := *s
	if s.EventDate != nil {
		d := *s.EventDate
		out.EventDate = &d
	}
	return &out
}

// GetSettings returns the stored settings or the defaults
func (r *SettingsRepository) GetSettings(ctx context.Context) (*models.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return models.DefaultSettings(), nil
	}
	return copySettings(r.settings), nil
}

// UpdateSettings replaces the singleton
func (r *SettingsRepository) UpdateSettings(ctx context.Context, settings *models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings.UpdatedAt = time.Now()
	r.settings = copySettings(settings)
	return nil
}
