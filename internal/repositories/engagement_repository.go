package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/foodreels/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// EngagementRepository defines like/save operations
type EngagementRepository interface {
	// Toggle removes the (user, food) record of kind if present, otherwise
	// creates it, and moves the food's counter by the same amount.
	Toggle(ctx context.Context, kind models.EngagementKind, userID, foodID string) (*models.ToggleResult, error)
	// ListSaved returns a user's saves, newest first, with food items expanded.
	ListSaved(ctx context.Context, userID string) ([]models.SavedFood, error)
}

// MongoEngagementRepository implements EngagementRepository for MongoDB.
// Toggles run in multi-document transactions and therefore need a replica set.
type MongoEngagementRepository struct {
	client *mongo.Client
	db     *mongo.Database
	foods  *mongo.Collection
}

// NewMongoEngagementRepository creates a new MongoEngagementRepository
func NewMongoEngagementRepository(client *mongo.Client, db *mongo.Database) *MongoEngagementRepository {
	return &MongoEngagementRepository{
		client: client,
		db:     db,
		foods:  db.Collection(foodsCollection),
	}
}

// Toggle flips the engagement state inside one transaction. Concurrent toggles
// on the same pair conflict on the unique (user, food) index entry; the driver
// retries the loser, so each committed call flips the state exactly once.
// Errors inside the transaction are returned unwrapped so the driver can still
// see their transient labels.
func (r *MongoEngagementRepository) Toggle(ctx context.Context, kind models.EngagementKind, userID, foodID string) (*models.ToggleResult, error) {
	foodOID, err := primitive.ObjectIDFromHex(foodID)
	if err != nil {
		return nil, ErrInvalidID
	}

	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.toggleInTxn(sc, kind, userID, foodOID)
	}, txnOpts)
	if err != nil {
		if errors.Is(err, ErrFoodNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("toggle %s: %w", kind, err)
	}
	return result.(*models.ToggleResult), nil
}

func (r *MongoEngagementRepository) toggleInTxn(ctx mongo.SessionContext, kind models.EngagementKind, userID string, foodOID primitive.ObjectID) (*models.ToggleResult, error) {
	coll := r.db.Collection(kind.Collection())

	deleted, err := coll.DeleteOne(ctx, bson.M{"user": userID, "food": foodOID})
	if err != nil {
		return nil, err
	}

	delta := int64(-1)
	var record *models.Engagement
	if deleted.DeletedCount == 0 {
		record = &models.Engagement{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			FoodID:    foodOID,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := coll.InsertOne(ctx, record); err != nil {
			return nil, err
		}
		delta = 1
	}

	var food models.FoodItem
	err = r.foods.FindOneAndUpdate(ctx,
		bson.M{"_id": foodOID},
		bson.M{
			"$inc": bson.M{kind.CounterField(): delta},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&food)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}

	return &models.ToggleResult{
		Kind:   kind,
		Active: delta > 0,
		Count:  food.Counter(kind),
		Record: record,
	}, nil
}

// ListSaved expands each save with its food item. Saves pointing at a food
// that no longer exists are skipped.
func (r *MongoEngagementRepository) ListSaved(ctx context.Context, userID string) ([]models.SavedFood, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         foodsCollection,
			"localField":   "food",
			"foreignField": "_id",
			"as":           "foodDoc",
		}}},
		{{Key: "$unwind", Value: "$foodDoc"}},
	}

	cursor, err := r.db.Collection(models.EngagementSave.Collection()).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	saved := []models.SavedFood{}
	if err := cursor.All(ctx, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}
