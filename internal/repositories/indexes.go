package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/foodreels/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the indexes the repositories rely on. The unique
// (user, food) indexes are what keep likes and saves one per pair.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	for _, kind := range []models.EngagementKind{models.EngagementLike, models.EngagementSave} {
		_, err := db.Collection(kind.Collection()).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "food", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("user_food_unique"),
			},
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("user_created"),
			},
		})
		if err != nil {
			return fmt.Errorf("create %s indexes: %w", kind.Collection(), err)
		}
	}

	_, err := db.Collection(foodsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_desc")},
		{Keys: bson.D{{Key: "foodPartner", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("partner_created")},
	})
	if err != nil {
		return fmt.Errorf("create %s indexes: %w", foodsCollection, err)
	}
	return nil
}
