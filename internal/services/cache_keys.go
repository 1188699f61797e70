package services

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	categoriesKey  = "categories"
	settingsKey    = "settings"
	usersKey       = "users"
	suggestionsKey = "category-suggestions"
)

// resultsKey is the cache key of one category's tally
func resultsKey(categoryID primitive.ObjectID) string {
	return "category-results:" + categoryID.Hex()
}
