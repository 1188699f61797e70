package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// flakyWriter keeps documents in memory. insertFailAt makes InsertMany stop
// after that many documents, like an ordered insert hitting a bad row.
// deleteErrs are returned by successive DeleteMany calls.
type flakyWriter struct {
	stored       []interface{}
	insertFailAt int
	deleteErrs   []error
	deletes      int
}

func (w *flakyWriter) DeleteMany(context.Context, interface{}, ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	call := w.deletes
	w.deletes++
	if call < len(w.deleteErrs) && w.deleteErrs[call] != nil {
		return nil, w.deleteErrs[call]
	}
	n := int64(len(w.stored))
	w.stored = nil
	return &mongo.DeleteResult{DeletedCount: n}, nil
}

func (w *flakyWriter) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	if w.insertFailAt >= 0 && w.insertFailAt < len(docs) {
		w.stored = append(w.stored, docs[:w.insertFailAt]...)
		return nil, errors.New("insert failed")
	}
	w.stored = append(w.stored, docs...)
	return &mongo.InsertManyResult{}, nil
}

func threeVotes(voterID primitive.ObjectID) []interface{} {
	docs := make([]interface{}, 3)
	for i := range docs {
		docs[i] = &models.Vote{ID: primitive.NewObjectID(), VoterID: voterID, CategoryID: primitive.NewObjectID(), ParticipantHandle: "a"}
	}
	return docs
}

func TestReplaceSequentially(t *testing.T) {
	ctx := context.Background()
	voter := primitive.NewObjectID()

	t.Run("stores the new ballot", func(t *testing.T) {
		w := &flakyWriter{insertFailAt: -1, stored: threeVotes(voter)[:1]}
		require.NoError(t, replaceSequentially(ctx, w, voter, threeVotes(voter)))
		assert.Len(t, w.stored, 3)
	})

	t.Run("insert failure removes the written prefix", func(t *testing.T) {
		w := &flakyWriter{insertFailAt: 1}
		err := replaceSequentially(ctx, w, voter, threeVotes(voter))

		var partial *repositories.PartialReplaceError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, voter, partial.VoterID)
		assert.NoError(t, partial.CleanupErr)
		assert.False(t, partial.BallotLeftPartial())
		assert.Empty(t, w.stored)
	})

	t.Run("failed cleanup is reported", func(t *testing.T) {
		network := errors.New("connection reset")
		w := &flakyWriter{insertFailAt: 1, deleteErrs: []error{nil, network}}
		err := replaceSequentially(ctx, w, voter, threeVotes(voter))

		var partial *repositories.PartialReplaceError
		require.ErrorAs(t, err, &partial)
		assert.True(t, partial.BallotLeftPartial())
		assert.ErrorIs(t, err, network)
		assert.Contains(t, err.Error(), "partial ballot may remain")
		assert.Len(t, w.stored, 1, "the prefix survives when cleanup fails")
	})

	t.Run("delete failure touches nothing", func(t *testing.T) {
		w := &flakyWriter{insertFailAt: -1, deleteErrs: []error{errors.New("timeout")}, stored: threeVotes(voter)}
		err := replaceSequentially(ctx, w, voter, threeVotes(voter))
		require.Error(t, err)

		var partial *repositories.PartialReplaceError
		assert.False(t, errors.As(err, &partial))
		assert.Len(t, w.stored, 3)
	})
}
