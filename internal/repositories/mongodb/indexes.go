package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	categoriesCollection  = "categories"
	votesCollection       = "votes"
	settingsCollection    = "settings"
	usersCollection       = "users"
	suggestionsCollection = "category_suggestions"
)

// nameCollation compares category names ignoring case and accents
var nameCollation = &options.Collation{Locale: "pt", Strength: 2}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		categoriesCollection: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetCollation(nameCollation).SetName("name_unique_ci"),
			},
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		},
		votesCollection: {
			{
				Keys:    bson.D{{Key: "voterId", Value: 1}, {Key: "categoryId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("voter_category_unique"),
			},
			{Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		usersCollection: {
			{
				Keys:    bson.D{{Key: "handle", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("handle_unique"),
			},
		},
		suggestionsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", collection, err)
		}
	}
	return nil
}
