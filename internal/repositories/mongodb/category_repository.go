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

// Compile-time check to ensure CategoryRepository implements the interface
var _ repositories.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository handles MongoDB operations for Category
type CategoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection(categoriesCollection),
	}
}

// Create inserts a new category. Names clashing case-insensitively yield ErrDuplicate.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	category.ID = primitive.NewObjectID()
	category.CreatedAt = time.Now()
	if category.Participants == nil {
		category.Participants = []models.Participant{}
	}
	_, err := r.collection.InsertOne(ctx, category)
	return translateError(err)
}

// FindByID finds a category by ID
func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// FindAll retrieves every category in creation order
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []*models.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

// Update replaces the name and participants of an existing category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":         category.Name,
			"participants": category.Participants,
			"updatedAt":    category.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID}, update)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete deletes a category by ID
func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
