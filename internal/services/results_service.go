package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/pkg/cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ ResultsAggregator = (*ResultsService)(nil)

// ResultsService computes standings from the vote ledger. Nothing is kept
// incrementally; per-category tallies are cached and dropped on every write.
type ResultsService struct {
	voteRepo     repositories.VoteRepository
	categoryRepo repositories.CategoryRepository
	cache        *cache.Cache
	ttl          time.Duration
}

// NewResultsService creates a new ResultsService
func NewResultsService(voteRepo repositories.VoteRepository, categoryRepo repositories.CategoryRepository, c *cache.Cache, ttl time.Duration) *ResultsService {
	return &ResultsService{
		voteRepo:     voteRepo,
		categoryRepo: categoryRepo,
		cache:        c,
		ttl:          ttl,
	}
}

// Tally ranks the participants of a category by vote count, highest first.
// Equal counts are ordered by participant handle.
func (s *ResultsService) Tally(ctx context.Context, categoryID primitive.ObjectID) ([]models.ParticipantTally, error) {
	rows, err := cache.GetOrLoad(ctx, s.cache, resultsKey(categoryID), s.ttl, func(ctx context.Context) ([]models.ParticipantTally, error) {
		if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
			return nil, err
		}
		votes, err := s.voteRepo.FindByCategory(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to load votes: %w", err)
		}
		return tally(votes), nil
	})
	if err != nil {
		return nil, err
	}
	return copyTally(rows), nil
}

// TopN returns the first n rows of Tally, or all of them when there are fewer
func (s *ResultsService) TopN(ctx context.Context, categoryID primitive.ObjectID, n int) ([]models.ParticipantTally, error) {
	if n <= 0 {
		return nil, invalid("top", "must be a positive number")
	}
	rows, err := s.Tally(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return topN(rows, n), nil
}

// CategoryResults returns the standing of one category with its total vote count.
// n > 0 applies the TopN cut to the same tally the total is summed from.
func (s *ResultsService) CategoryResults(ctx context.Context, categoryID primitive.ObjectID, n int) (*models.CategoryResults, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Tally(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, r := range rows {
		total += r.VoteCount
	}
	if n > 0 {
		rows = topN(rows, n)
	}
	return &models.CategoryResults{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Results:      rows,
		TotalVotes:   total,
	}, nil
}

// AllCategoryTallies computes every category's standing and the ballots grouped by voter handle.
// It reads the whole ledger once so both views come from the same snapshot.
func (s *ResultsService) AllCategoryTallies(ctx context.Context) (*models.AllResults, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	votes, err := s.voteRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	byCategory := make(map[primitive.ObjectID][]*models.Vote, len(categories))
	byVoter := make(map[string][]models.UserVote)
	known := make(map[primitive.ObjectID]struct{}, len(categories))
	for _, c := range categories {
		known[c.ID] = struct{}{}
	}
	for _, v := range votes {
		if _, ok := known[v.CategoryID]; !ok {
			continue
		}
		byCategory[v.CategoryID] = append(byCategory[v.CategoryID], v)
		byVoter[v.VoterHandle] = append(byVoter[v.VoterHandle], models.UserVote{
			CategoryName:      v.CategoryName,
			ParticipantHandle: v.ParticipantHandle,
		})
	}

	results := make([]models.CategoryResults, 0, len(categories))
	for _, c := range categories {
		rows := tally(byCategory[c.ID])
		results = append(results, models.CategoryResults{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Results:      rows,
			TotalVotes:   len(byCategory[c.ID]),
		})
	}

	return &models.AllResults{CategoryResults: results, VotesByUser: byVoter}, nil
}

// Truncate keeps the first n rows of every category, leaving TotalVotes untouched
func Truncate(all *models.AllResults, n int) *models.AllResults {
	if n <= 0 {
		return all
	}
	out := &models.AllResults{VotesByUser: all.VotesByUser, CategoryResults: make([]models.CategoryResults, len(all.CategoryResults))}
	for i, cr := range all.CategoryResults {
		cr.Results = topN(cr.Results, n)
		out.CategoryResults[i] = cr
	}
	return out
}

// topN keeps the first n ranked rows
func topN(rows []models.ParticipantTally, n int) []models.ParticipantTally {
	if n < len(rows) {
		return rows[:n]
	}
	return rows
}

// tally groups votes by participant. Votes are expected in insertion order,
// which is the order voter handles are listed in.
func tally(votes []*models.Vote) []models.ParticipantTally {
	ordered := make([]*models.Vote, len(votes))
	copy(ordered, votes)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].VoterHandle < ordered[j].VoterHandle
	})

	index := make(map[string]int)
	rows := []models.ParticipantTally{}
	for _, v := range ordered {
		i, ok := index[v.ParticipantHandle]
		if !ok {
			i = len(rows)
			index[v.ParticipantHandle] = i
			rows = append(rows, models.ParticipantTally{Participant: v.ParticipantHandle, VoterHandles: []string{}})
		}
		rows[i].VoteCount++
		rows[i].VoterHandles = append(rows[i].VoterHandles, v.VoterHandle)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].VoteCount != rows[j].VoteCount {
			return rows[i].VoteCount > rows[j].VoteCount
		}
		return rows[i].Participant < rows[j].Participant
	})
	return rows
}

func copyTally(rows []models.ParticipantTally) []models.ParticipantTally {
	out := make([]models.ParticipantTally, len(rows))
	for i, r := range rows {
		r.VoterHandles = append([]string{}, r.VoterHandles...)
		out[i] = r
	}
	return out
}
