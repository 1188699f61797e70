package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VotingPhase is the global state controlling which operations are permitted
type VotingPhase string

const (
	PhaseChoosingCategories VotingPhase = "choosing-categories"
	PhasePreVoting          VotingPhase = "pre-voting"
	PhaseVoting             VotingPhase = "voting"
	PhasePostVoting         VotingPhase = "post-voting"
	PhaseResults            VotingPhase = "results"
)

// AllPhases lists the phases in their usual running order
var AllPhases = []VotingPhase{
	PhaseChoosingCategories,
	PhasePreVoting,
	PhaseVoting,
	PhasePostVoting,
	PhaseResults,
}

// Valid reports whether p is one of the known phases
func (p VotingPhase) Valid() bool {
	for _, known := range AllPhases {
		if p == known {
			return true
		}
	}
	return false
}

// Settings is the process-wide singleton holding the voting phase
type Settings struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Phase     VotingPhase        `bson:"phase" json:"status"`
	EventDate *time.Time         `bson:"eventDate,omitempty" json:"eventDate,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	UpdatedBy string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// DefaultSettings is used when no settings document exists yet
func DefaultSettings() *Settings {
	return &Settings{Phase: PhaseChoosingCategories}
}

// UpdateSettingsRequest is the admin payload for PUT /admin/settings.
// EventDate accepts RFC3339 or a natural-language date; an empty string clears it.
type UpdateSettingsRequest struct {
	Status    *VotingPhase `json:"status"`
	EventDate *string      `json:"eventDate"`
}
