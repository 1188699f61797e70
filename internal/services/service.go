package services

import (
	"context"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhaseAuthorizer decides which operations the current voting phase permits
type PhaseAuthorizer interface {
	// AuthorizeWrite fails with a PhaseError unless voting is open. It always reads the store.
	AuthorizeWrite(ctx context.Context) error

	// AuthorizeResultsRead fails with a PhaseError unless results are published
	AuthorizeResultsRead(ctx context.Context) error

	// Current returns the settings, possibly from cache
	Current(ctx context.Context) (*models.Settings, error)

	// SetPhase moves to any phase and takes effect immediately
	SetPhase(ctx context.Context, phase models.VotingPhase, updatedBy string) (*models.Settings, error)
}

// VoteLedger stores each user's ballot
type VoteLedger interface {
	// CastVotes replaces the user's whole ballot with votesByCategory
	CastVotes(ctx context.Context, userID primitive.ObjectID, userHandle string, votesByCategory map[string]string, knownCategories []*models.Category) (map[string]string, error)

	// VotesForUser returns the user's ballot keyed by category ID
	VotesForUser(ctx context.Context, userID primitive.ObjectID) (map[string]string, error)
}

// ResultsAggregator ranks participants from the ledger
type ResultsAggregator interface {
	// Tally ranks every participant that received a vote in the category
	Tally(ctx context.Context, categoryID primitive.ObjectID) ([]models.ParticipantTally, error)

	// TopN returns the first n rows of Tally
	TopN(ctx context.Context, categoryID primitive.ObjectID, n int) ([]models.ParticipantTally, error)

	// AllCategoryTallies returns every category's standing plus the votes of each voter
	AllCategoryTallies(ctx context.Context) (*models.AllResults, error)
}
