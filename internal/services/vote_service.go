package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/metrics"
	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/internal/utils"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ VoteLedger = (*VoteService)(nil)

// VoteService is the vote ledger. A user's ballot is only ever replaced as a
// whole: the old votes are deleted and the new ones inserted.
type VoteService struct {
	voteRepo repositories.VoteRepository
	cache    *cache.Cache
	locks    *keyedMutex
	log      *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewVoteService creates a new VoteService
func NewVoteService(voteRepo repositories.VoteRepository, c *cache.Cache, log *slog.Logger, m *metrics.Metrics) *VoteService {
	return &VoteService{
		voteRepo: voteRepo,
		cache:    c,
		locks:    newKeyedMutex(),
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// CastVotes replaces the user's ballot. Entries naming a category outside
// knownCategories are dropped. Participant handles are normalised the same way
// category participants are, so "@Ana" and "ana" count as one nominee. Callers must have passed PhaseGate.AuthorizeWrite.
func (s *VoteService) CastVotes(ctx context.Context, userID primitive.ObjectID, userHandle string, votesByCategory map[string]string, knownCategories []*models.Category) (map[string]string, error) {
	if len(votesByCategory) == 0 {
		return nil, invalid("votes", "at least one vote is required")
	}

	known := make(map[string]*models.Category, len(knownCategories))
	for _, c := range knownCategories {
		known[c.ID.Hex()] = c
	}

	categoryIDs := make([]string, 0, len(votesByCategory))
	for id := range votesByCategory {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Strings(categoryIDs)

	now := s.now()
	votes := make([]*models.Vote, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		category, ok := known[id]
		if !ok {
			s.log.DebugContext(ctx, "dropping vote for unknown category", "user_id", userID.Hex(), "category_id", id)
			continue
		}
		handle := utils.NormalizeHandle(votesByCategory[id])
		if handle == "" {
			return nil, invalid("votes."+id, "participant handle is required")
		}
		votes = append(votes, &models.Vote{
			VoterID:           userID,
			VoterHandle:       userHandle,
			CategoryID:        category.ID,
			CategoryName:      category.Name,
			ParticipantHandle: handle,
			CreatedAt:         now,
		})
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	previous, err := s.voteRepo.FindByVoter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current votes: %w", err)
	}

	stored, err := s.voteRepo.ReplaceForVoter(ctx, userID, votes)
	s.invalidateResults(previous, votes)
	if err != nil {
		var partial *repositories.PartialReplaceError
		if errors.As(err, &partial) {
			s.metrics.ReplaceFailed("partial")
			if partial.BallotLeftPartial() {
				s.log.ErrorContext(ctx, "ballot replace failed and cleanup failed, part of the new ballot may remain",
					"user_id", userID.Hex(), "user_handle", userHandle, "error", partial.Err, "cleanup_error", partial.CleanupErr)
			} else {
				s.log.ErrorContext(ctx, "ballot deleted but not re-inserted, user must resubmit",
					"user_id", userID.Hex(), "user_handle", userHandle, "error", partial.Err)
			}
			return nil, &ConsistencyError{UserID: userID.Hex(), Err: errors.Join(partial.Err, partial.CleanupErr)}
		}
		s.metrics.ReplaceFailed("aborted")
		return nil, fmt.Errorf("failed to replace votes: %w", err)
	}

	s.metrics.VotesCast(len(stored))
	return ballot(stored), nil
}

// VotesForUser returns the user's current ballot
func (s *VoteService) VotesForUser(ctx context.Context, userID primitive.ObjectID) (map[string]string, error) {
	unlock := s.locks.RLock(userID)
	defer unlock()

	votes, err := s.voteRepo.FindByVoter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	return ballot(votes), nil
}

func (s *VoteService) invalidateResults(previous, next []*models.Vote) {
	seen := make(map[primitive.ObjectID]struct{})
	keys := make([]string, 0, len(previous)+len(next))
	for _, set := range [][]*models.Vote{previous, next} {
		for _, v := range set {
			if _, dup := seen[v.CategoryID]; dup {
				continue
			}
			seen[v.CategoryID] = struct{}{}
			keys = append(keys, resultsKey(v.CategoryID))
		}
	}
	if len(keys) > 0 {
		s.cache.Invalidate(keys...)
	}
}

func ballot(votes []*models.Vote) map[string]string {
	out := make(map[string]string, len(votes))
	for _, v := range votes {
		out[v.CategoryID.Hex()] = v.ParticipantHandle
	}
	return out
}
