package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/YasminCastro/malucas-awards-v2/internal/logging"
	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories/memory"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCastVotesKeepsResolvableSubset(t *testing.T) {
	in := newTestInstance(t)
	bestPost := in.mustCategory(t, "Best Post", "a", "b")
	latest := in.mustCategory(t, "Always Late", "c")
	user := primitive.NewObjectID()
	unknown := primitive.NewObjectID().Hex()

	got, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{
		bestPost.ID.Hex(): "a",
		latest.ID.Hex():   "c",
		unknown:           "z",
	}, in.knownCategories(t))
	require.NoError(t, err)

	want := map[string]string{bestPost.ID.Hex(): "a", latest.ID.Hex(): "c"}
	assert.Equal(t, want, got)

	stored, err := in.ledger.VotesForUser(in.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, want, stored)

	votes, err := in.votes.FindByVoter(in.ctx, user)
	require.NoError(t, err)
	for _, v := range votes {
		if v.CategoryID == bestPost.ID {
			assert.Equal(t, "Best Post", v.CategoryName, "category name is denormalised onto the vote")
			assert.Equal(t, "u1", v.VoterHandle)
		}
	}
}

func TestCastVotesValidation(t *testing.T) {
	in := newTestInstance(t)
	c := in.mustCategory(t, "Best Post", "a")
	user := primitive.NewObjectID()

	var verr *ValidationError
	_, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{}, in.knownCategories(t))
	assert.ErrorAs(t, err, &verr)

	_, err = in.ledger.CastVotes(in.ctx, user, "u1", nil, in.knownCategories(t))
	assert.ErrorAs(t, err, &verr)

	_, err = in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): "  "}, in.knownCategories(t))
	assert.ErrorAs(t, err, &verr)

	stored, err := in.ledger.VotesForUser(in.ctx, user)
	require.NoError(t, err)
	assert.Empty(t, stored, "rejected submissions never touch the ledger")
}

func TestCastVotesNormalisesParticipantHandles(t *testing.T) {
	in := newTestInstance(t)
	c := in.mustCategory(t, "Best Post", "@a", "@b")
	known := in.knownCategories(t)
	require.Equal(t, []models.Participant{{Handle: "a"}, {Handle: "b"}}, known[0].Participants)

	for i, handle := range []string{"@a", "a", " @A "} {
		got, err := in.ledger.CastVotes(in.ctx, primitive.NewObjectID(), fmt.Sprintf("v%d", i+1), map[string]string{c.ID.Hex(): handle}, known)
		require.NoError(t, err)
		assert.Equal(t, "a", got[c.ID.Hex()])
	}

	rows, err := in.results.Tally(in.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "every spelling lands on the same nominee")
	assert.Equal(t, "a", rows[0].Participant)
	assert.Equal(t, 3, rows[0].VoteCount)

	var verr *ValidationError
	_, err = in.ledger.CastVotes(in.ctx, primitive.NewObjectID(), "v4", map[string]string{c.ID.Hex(): " @ "}, known)
	assert.ErrorAs(t, err, &verr, "a handle that is only an at sign is blank")
}

func TestCastVotesReplacesWholeBallot(t *testing.T) {
	in := newTestInstance(t)
	c1 := in.mustCategory(t, "C1", "a", "b")
	c2 := in.mustCategory(t, "C2", "a", "b")
	c3 := in.mustCategory(t, "C3", "a", "b")
	user := primitive.NewObjectID()
	known := in.knownCategories(t)

	_, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{
		c1.ID.Hex(): "a",
		c2.ID.Hex(): "a",
	}, known)
	require.NoError(t, err)

	v2 := map[string]string{
		c2.ID.Hex(): "b",
		c3.ID.Hex(): "a",
	}
	_, err = in.ledger.CastVotes(in.ctx, user, "u1", v2, known)
	require.NoError(t, err)

	stored, err := in.ledger.VotesForUser(in.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, v2, stored, "C1 was omitted so its vote is gone")
}

func TestCastVotesIsIdempotent(t *testing.T) {
	in := newTestInstance(t)
	c := in.mustCategory(t, "Best Post", "a", "b")
	user := primitive.NewObjectID()
	ballot := map[string]string{c.ID.Hex(): "a"}

	for i := 0; i < 2; i++ {
		_, err := in.ledger.CastVotes(in.ctx, user, "u1", ballot, in.knownCategories(t))
		require.NoError(t, err)
	}

	rows, err := in.results.Tally(in.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].VoteCount)

	count, err := in.votes.CountByCategory(in.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCastVotesConcurrentSameUser(t *testing.T) {
	in := newTestInstance(t)
	gofakeit.Seed(42)
	categories := []*models.Category{
		in.mustCategory(t, "C1", "a", "b"),
		in.mustCategory(t, "C2", "a", "b"),
		in.mustCategory(t, "C3", "a", "b"),
	}
	known := in.knownCategories(t)
	user := primitive.NewObjectID()
	handle := gofakeit.Username()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ballot := map[string]string{}
			for j, c := range categories {
				if (i+j)%2 == 0 {
					ballot[c.ID.Hex()] = "a"
				} else {
					ballot[c.ID.Hex()] = "b"
				}
			}
			_, err := in.ledger.CastVotes(in.ctx, user, handle, ballot, known)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, c := range categories {
		count, err := in.votes.CountByCategory(in.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "exactly one vote per (user, category)")
	}
	assert.Equal(t, 0, in.ledger.locks.size(), "per-user locks are released")
}

func TestVotesForUserNeverSeesEmptyBallotDuringReplace(t *testing.T) {
	in := newTestInstance(t)
	c := in.mustCategory(t, "Best Post", "a", "b")
	known := in.knownCategories(t)
	user := primitive.NewObjectID()
	_, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): "a"}, known)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			handle := "a"
			if i%2 == 0 {
				handle = "b"
			}
			_, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): handle}, known)
			assert.NoError(t, err)
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		ballot, err := in.ledger.VotesForUser(in.ctx, user)
		require.NoError(t, err)
		require.Len(t, ballot, 1)
	}
}

func TestCastVotesManyVoters(t *testing.T) {
	in := newTestInstance(t)
	gofakeit.Seed(7)
	c := in.mustCategory(t, "Best Post", "a", "b", "c")
	known := in.knownCategories(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := in.ledger.CastVotes(in.ctx, primitive.NewObjectID(), gofakeit.Username(), map[string]string{c.ID.Hex(): "a"}, known)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rows, err := in.results.Tally(in.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 50, rows[0].VoteCount)
	assert.Len(t, rows[0].VoterHandles, 50)
}

// partialVoteRepo deletes the voter's ballot and then fails, like a sequential
// replace whose insert step broke.
type partialVoteRepo struct {
	*memory.VoteRepository
	err        error
	cleanupErr error
}

func (r *partialVoteRepo) ReplaceForVoter(ctx context.Context, voterID primitive.ObjectID, votes []*models.Vote) ([]*models.Vote, error) {
	if _, err := r.VoteRepository.ReplaceForVoter(ctx, voterID, nil); err != nil {
		return nil, err
	}
	return nil, &repositories.PartialReplaceError{VoterID: voterID, Err: r.err, CleanupErr: r.cleanupErr}
}

// abortingVoteRepo fails before touching anything
type abortingVoteRepo struct {
	*memory.VoteRepository
}

func (r *abortingVoteRepo) ReplaceForVoter(context.Context, primitive.ObjectID, []*models.Vote) ([]*models.Vote, error) {
	return nil, errors.New("transaction aborted")
}

func TestCastVotesPartialFailureIsConsistencyError(t *testing.T) {
	in := newTestInstance(t)
	c := in.mustCategory(t, "Best Post", "a")
	user := primitive.NewObjectID()
	_, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): "a"}, in.knownCategories(t))
	require.NoError(t, err)

	_, err = in.results.Tally(in.ctx, c.ID)
	require.NoError(t, err)

	boom := errors.New("insert failed")
	repo := &partialVoteRepo{VoteRepository: in.votes, err: boom}
	ledger := NewVoteService(repo, in.cache, logging.Discard(), in.metrics)

	_, err = ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): "a"}, in.knownCategories(t))
	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, user.Hex(), cerr.UserID)
	assert.ErrorIs(t, err, boom)

	ballot, err := in.ledger.VotesForUser(in.ctx, user)
	require.NoError(t, err)
	assert.Empty(t, ballot, "the degraded state is an empty ballot")

	rows, err := in.results.Tally(in.ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, rows, "results are invalidated even when the replace fails")
}

func TestCastVotesFailedCleanupIsReported(t *testing.T) {
	in := newTestInstance(t)
	c := in.mustCategory(t, "Best Post", "a")
	user := primitive.NewObjectID()

	insertErr := errors.New("insert failed")
	cleanupErr := errors.New("connection reset")
	var logs bytes.Buffer
	repo := &partialVoteRepo{VoteRepository: in.votes, err: insertErr, cleanupErr: cleanupErr}
	ledger := NewVoteService(repo, in.cache, logging.New(&logs, "debug"), in.metrics)

	_, err := ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): "a"}, in.knownCategories(t))
	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, insertErr)
	assert.ErrorIs(t, err, cleanupErr)
	assert.Contains(t, logs.String(), "part of the new ballot may remain")
	assert.Contains(t, logs.String(), "connection reset")
}

func TestCastVotesAbortedReplaceKeepsBallot(t *testing.T) {
	in := newTestInstance(t)
	c := in.mustCategory(t, "Best Post", "a", "b")
	user := primitive.NewObjectID()
	_, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): "a"}, in.knownCategories(t))
	require.NoError(t, err)

	ledger := NewVoteService(&abortingVoteRepo{VoteRepository: in.votes}, in.cache, logging.Discard(), in.metrics)
	_, err = ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): "b"}, in.knownCategories(t))
	require.Error(t, err)
	var cerr *ConsistencyError
	assert.False(t, errors.As(err, &cerr))

	ballot, err := in.ledger.VotesForUser(in.ctx, user)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{c.ID.Hex(): "a"}, ballot)
}

func TestCastVotesInvalidatesTouchedResults(t *testing.T) {
	in := newTestInstance(t)
	c1 := in.mustCategory(t, "C1", "a")
	c2 := in.mustCategory(t, "C2", "a")
	c3 := in.mustCategory(t, "C3", "a")
	user := primitive.NewObjectID()
	known := in.knownCategories(t)

	_, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{c1.ID.Hex(): "a"}, known)
	require.NoError(t, err)
	for _, c := range []*models.Category{c1, c2, c3} {
		_, err := in.results.Tally(in.ctx, c.ID)
		require.NoError(t, err)
	}

	_, err = in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{c2.ID.Hex(): "a"}, known)
	require.NoError(t, err)

	_, ok := in.cache.Get(resultsKey(c1.ID))
	assert.False(t, ok, "old category is invalidated")
	_, ok = in.cache.Get(resultsKey(c2.ID))
	assert.False(t, ok, "new category is invalidated")
	_, ok = in.cache.Get(resultsKey(c3.ID))
	assert.True(t, ok, "untouched category keeps its entry")
}

func TestPhaseChangeBlocksVoteEdit(t *testing.T) {
	in := newTestInstance(t)
	c := in.mustCategory(t, "Best Post", "a", "b")
	user := primitive.NewObjectID()
	in.mustPhase(t, models.PhaseVoting)

	require.NoError(t, in.gate.AuthorizeWrite(in.ctx))
	_, err := in.ledger.CastVotes(in.ctx, user, "u1", map[string]string{c.ID.Hex(): "a"}, in.knownCategories(t))
	require.NoError(t, err)

	in.mustPhase(t, models.PhaseResults)
	assert.ErrorIs(t, in.gate.AuthorizeWrite(in.ctx), ErrPhaseViolation)

	rows, err := in.results.Tally(in.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].Participant)
	assert.Equal(t, []string{"u1"}, rows[0].VoterHandles)
}
