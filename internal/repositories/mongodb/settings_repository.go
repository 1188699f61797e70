package mongodb

import (
	"context"
	"time"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure SettingsRepository implements the interface
var _ repositories.SettingsRepository = (*SettingsRepository)(nil)

// SettingsRepository stores the voting settings as a single document
type SettingsRepository struct {
	collection *mongo.Collection
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection(settingsCollection),
	}
}

// GetSettings retrieves the current settings, falling back to the defaults
func (r *SettingsRepository) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	if !settings.Phase.Valid() {
		settings.Phase = models.PhaseChoosingCategories
	}
	return &settings, nil
}

// UpdateSettings replaces the singleton, creating it on first write
func (r *SettingsRepository) UpdateSettings(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"phase":     settings.Phase,
			"eventDate": settings.EventDate,
			"updatedAt": settings.UpdatedAt,
			"updatedBy": settings.UpdatedBy,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	return err
}
