package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// SettingsService applies admin edits to the voting settings
type SettingsService struct {
	gate   *PhaseGate
	parser *when.Parser
	now    func() time.Time
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(gate *PhaseGate) *SettingsService {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &SettingsService{
		gate:   gate,
		parser: w,
		now:    time.Now,
	}
}

// Get returns the settings, bypassing the cache
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	return s.gate.Fresh(ctx)
}

// Update changes the phase and/or the event date. Nil fields are kept as they are.
func (s *SettingsService) Update(ctx context.Context, req models.UpdateSettingsRequest, updatedBy string) (*models.Settings, error) {
	if req.Status == nil && req.EventDate == nil {
		return nil, invalid("", "nothing to update")
	}

	if req.Status != nil && !req.Status.Valid() {
		return nil, invalid("status", fmt.Sprintf("unknown phase %q", *req.Status))
	}
	if req.EventDate == nil {
		return s.gate.SetPhase(ctx, *req.Status, updatedBy)
	}

	settings, err := s.gate.Fresh(ctx)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		settings.Phase = *req.Status
	}
	if req.EventDate != nil {
		date, err := s.ParseEventDate(*req.EventDate)
		if err != nil {
			return nil, err
		}
		settings.EventDate = date
	}
	settings.UpdatedBy = updatedBy

	if err := s.gate.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ParseEventDate accepts RFC3339 or plain English such as "next friday 20:00".
// An empty string clears the date.
func (s *SettingsService) ParseEventDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	r, err := s.parser.Parse(raw, s.now())
	if err != nil || r == nil {
		return nil, invalid("eventDate", fmt.Sprintf("could not understand date %q", raw))
	}
	t := r.Time
	return &t, nil
}
