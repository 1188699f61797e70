package mongodb

import (
	"context"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure CategorySuggestionRepository implements the interface
var _ repositories.CategorySuggestionRepository = (*CategorySuggestionRepository)(nil)

// CategorySuggestionRepository handles MongoDB operations for CategorySuggestion
type CategorySuggestionRepository struct {
	collection *mongo.Collection
}

// NewCategorySuggestionRepository creates a new CategorySuggestionRepository
func NewCategorySuggestionRepository(db *mongo.Database) *CategorySuggestionRepository {
	return &CategorySuggestionRepository{
		collection: db.Collection(suggestionsCollection),
	}
}

// Create inserts a new suggestion
func (r *CategorySuggestionRepository) Create(ctx context.Context, suggestion *models.CategorySuggestion) error {
	suggestion.ID = primitive.NewObjectID()
	suggestion.CreatedAt = time.Now()
	if suggestion.Participants == nil {
		suggestion.Participants = []string{}
	}
	_, err := r.collection.InsertOne(ctx, suggestion)
	return err
}

// FindByID finds a suggestion by ID
func (r *CategorySuggestionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CategorySuggestion, error) {
	var suggestion models.CategorySuggestion
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&suggestion); err != nil {
		return nil, translateError(err)
	}
	return &suggestion, nil
}

// FindAll retrieves all suggestions, newest first
func (r *CategorySuggestionRepository) FindAll(ctx context.Context) ([]*models.CategorySuggestion, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var suggestions []*models.CategorySuggestion
	if err = cursor.All(ctx, &suggestions); err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []*models.CategorySuggestion{}
	}
	return suggestions, nil
}

// AddParticipants appends handles that are not yet on the suggestion
func (r *CategorySuggestionRepository) AddParticipants(ctx context.Context, id primitive.ObjectID, handles []string) error {
	update := bson.M{"$addToSet": bson.M{"participants": bson.M{"$each": handles}}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Update overwrites the editable fields of a suggestion
func (r *CategorySuggestionRepository) Update(ctx context.Context, suggestion *models.CategorySuggestion) error {
	update := bson.M{
		"$set": bson.M{
			"suggesterName": suggestion.SuggesterName,
			"categoryName":  suggestion.CategoryName,
			"participants":  suggestion.Participants,
			"observations":  suggestion.Observations,
			"status":        suggestion.Status,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": suggestion.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete deletes a suggestion by ID
func (r *CategorySuggestionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
