package memory

import (
	"context"
	"sync"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.VoteRepository = (*VoteRepository)(nil)

// VoteRepository is an append-ordered vote ledger. ReplaceForVoter runs
// under the write lock, so readers see either the old or the new ballot.
type VoteRepository struct {
	mu    sync.RWMutex
	votes []*models.Vote
}

// NewVoteRepository creates an empty ledger
func NewVoteRepository() *VoteRepository {
	return &VoteRepository{}
}

func copyVote(v *models.Vote) *models.Vote {
	out := *v
	return &out
}

// ReplaceForVoter swaps the voter's ballot atomically
func (r *VoteRepository) ReplaceForVoter(ctx context.Context, voterID primitive.ObjectID, votes []*models.Vote) ([]*models.Vote, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(votes))
	for _, v := range votes {
		if _, dup := seen[v.CategoryID]; dup {
			return nil, repositories.ErrDuplicate
		}
		seen[v.CategoryID] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.votes[:0:0]
	for _, v := range r.votes {
		if v.VoterID != voterID {
			kept = append(kept, v)
		}
	}
	out := make([]*models.Vote, 0, len(votes))
	for _, v := range votes {
		if v.ID.IsZero() {
			v.ID = primitive.NewObjectID()
		}
		v.VoterID = voterID
		kept = append(kept, copyVote(v))
		out = append(out, copyVote(v))
	}
	r.votes = kept
	return out, nil
}

func (r *VoteRepository) filter(keep func(*models.Vote) bool) []*models.Vote {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Vote{}
	for _, v := range r.votes {
		if keep(v) {
			out = append(out, copyVote(v))
		}
	}
	return out
}

// FindByVoter returns a voter's votes
func (r *VoteRepository) FindByVoter(ctx context.Context, voterID primitive.ObjectID) ([]*models.Vote, error) {
	return r.filter(func(v *models.Vote) bool { return v.VoterID == voterID }), nil
}

// FindByCategory returns the votes of a category in insertion order
func (r *VoteRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*models.Vote, error) {
	return r.filter(func(v *models.Vote) bool { return v.CategoryID == categoryID }), nil
}

// FindAll returns the whole ledger
func (r *VoteRepository) FindAll(ctx context.Context) ([]*models.Vote, error) {
	return r.filter(func(*models.Vote) bool { return true }), nil
}

// CountByCategory counts the votes of a category
func (r *VoteRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return int64(len(r.filter(func(v *models.Vote) bool { return v.CategoryID == categoryID }))), nil
}
