package mongodb

import (
	"context"
	"fmt"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Compile-time check to ensure VoteRepository implements the interface
var _ repositories.VoteRepository = (*VoteRepository)(nil)

// VoteRepository handles MongoDB operations for the vote ledger
type VoteRepository struct {
	client        *mongo.Client
	collection    *mongo.Collection
	transactional bool
}

// NewVoteRepository creates a new VoteRepository. When transactional is set the
// replace of a voter's votes runs inside a multi-document transaction; this
// needs a replica set or sharded cluster.
func NewVoteRepository(db *mongo.Database, transactional bool) *VoteRepository {
	return &VoteRepository{
		client:        db.Client(),
		collection:    db.Collection(votesCollection),
		transactional: transactional,
	}
}

// ReplaceForVoter swaps the voter's current votes for the given ones
func (r *VoteRepository) ReplaceForVoter(ctx context.Context, voterID primitive.ObjectID, votes []*models.Vote) ([]*models.Vote, error) {
	docs := make([]interface{}, 0, len(votes))
	for _, vote := range votes {
		if vote.ID.IsZero() {
			vote.ID = primitive.NewObjectID()
		}
		vote.VoterID = voterID
		docs = append(docs, vote)
	}

	if r.transactional {
		if err := r.replaceInTransaction(ctx, voterID, docs); err != nil {
			return nil, err
		}
	} else if err := r.replaceSequentially(ctx, voterID, docs); err != nil {
		return nil, err
	}
	return r.FindByVoter(ctx, voterID)
}

func (r *VoteRepository) replaceInTransaction(ctx context.Context, voterID primitive.ObjectID, docs []interface{}) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.New(writeconcern.WMajority()))

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.DeleteMany(sc, bson.M{"voterId": voterID}); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		if _, err := r.collection.InsertMany(sc, docs); err != nil {
			return nil, err
		}
		return nil, nil
	}, txnOpts)
	if err != nil {
		return fmt.Errorf("vote replace transaction failed: %w", translateError(err))
	}
	return nil
}

// ballotWriter is the part of a collection the sequential replace needs
type ballotWriter interface {
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

func (r *VoteRepository) replaceSequentially(ctx context.Context, voterID primitive.ObjectID, docs []interface{}) error {
	return replaceSequentially(ctx, r.collection, voterID, docs)
}

func replaceSequentially(ctx context.Context, w ballotWriter, voterID primitive.ObjectID, docs []interface{}) error {
	filter := bson.M{"voterId": voterID}
	if _, err := w.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := w.InsertMany(ctx, docs); err != nil {
		// An ordered insert may have written a prefix; leave the voter with nothing rather than half a ballot.
		partial := &repositories.PartialReplaceError{VoterID: voterID, Err: translateError(err)}
		if _, cleanupErr := w.DeleteMany(context.WithoutCancel(ctx), filter); cleanupErr != nil {
			partial.CleanupErr = fmt.Errorf("failed to remove partial ballot: %w", cleanupErr)
		}
		return partial
	}
	return nil
}

// FindByVoter returns a voter's votes in insertion order
func (r *VoteRepository) FindByVoter(ctx context.Context, voterID primitive.ObjectID) ([]*models.Vote, error) {
	return r.find(ctx, bson.M{"voterId": voterID})
}

// FindByCategory returns every vote cast in a category in insertion order
func (r *VoteRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*models.Vote, error) {
	return r.find(ctx, bson.M{"categoryId": categoryID})
}

// FindAll returns the whole ledger
func (r *VoteRepository) FindAll(ctx context.Context) ([]*models.Vote, error) {
	return r.find(ctx, bson.M{})
}

// CountByCategory counts the votes cast in a category
func (r *VoteRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"categoryId": categoryID})
}

func (r *VoteRepository) find(ctx context.Context, filter bson.M) ([]*models.Vote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "voterHandle", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var votes []*models.Vote
	if err = cursor.All(ctx, &votes); err != nil {
		return nil, err
	}
	if votes == nil {
		votes = []*models.Vote{}
	}
	return votes, nil
}
