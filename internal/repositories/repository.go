package repositories

import (
	"context"
	"errors"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a lookup by id or handle matches nothing
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint
	ErrDuplicate = errors.New("duplicate record")
)

// PartialReplaceError reports a vote replace whose delete step succeeded but
// whose insert step did not. When CleanupErr is nil the voter is left with no
// votes; otherwise a prefix of the new ballot may still be stored.
type PartialReplaceError struct {
	VoterID    primitive.ObjectID
	Err        error
	CleanupErr error
}

func (e *PartialReplaceError) Error() string {
	msg := "votes of " + e.VoterID.Hex() + " deleted but not re-inserted: " + e.Err.Error()
	if e.CleanupErr != nil {
		msg += " (cleanup failed, partial ballot may remain: " + e.CleanupErr.Error() + ")"
	}
	return msg
}

func (e *PartialReplaceError) Unwrap() []error {
	if e.CleanupErr == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.CleanupErr}
}

// BallotLeftPartial reports whether some of the new votes may still be stored
func (e *PartialReplaceError) BallotLeftPartial() bool { return e.CleanupErr != nil }

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindAll(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// VoteRepository defines the interface for the vote ledger
type VoteRepository interface {
	// ReplaceForVoter deletes every vote owned by voterID and inserts votes in
	// their place as one logical unit. It returns the voter's votes afterwards.
	ReplaceForVoter(ctx context.Context, voterID primitive.ObjectID, votes []*models.Vote) ([]*models.Vote, error)
	FindByVoter(ctx context.Context, voterID primitive.ObjectID) ([]*models.Vote, error)
	FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*models.Vote, error)
	FindAll(ctx context.Context) ([]*models.Vote, error)
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

// SettingsRepository defines the interface for the voting settings singleton
type SettingsRepository interface {
	// GetSettings returns the stored settings, or the defaults when none exist
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, settings *models.Settings) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByHandle(ctx context.Context, handle string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CategorySuggestionRepository defines the interface for category suggestions
type CategorySuggestionRepository interface {
	Create(ctx context.Context, suggestion *models.CategorySuggestion) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CategorySuggestion, error)
	FindAll(ctx context.Context) ([]*models.CategorySuggestion, error)
	AddParticipants(ctx context.Context, id primitive.ObjectID, handles []string) error
	Update(ctx context.Context, suggestion *models.CategorySuggestion) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
