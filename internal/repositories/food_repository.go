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
)

const foodsCollection = "foods"

// ListOptions pages through food items. A zero Limit means no limit.
type ListOptions struct {
	Skip  int64
	Limit int64
}

// FoodRepository defines the interface for food item data operations
type FoodRepository interface {
	CreateFood(ctx context.Context, food *models.FoodItem) error
	GetFoodByID(ctx context.Context, id string) (*models.FoodItem, error)
	ListFoods(ctx context.Context, opts ListOptions) ([]models.FoodItem, error)
	ListFoodsByPartner(ctx context.Context, partnerID string) ([]models.FoodItem, error)
}

// MongoFoodRepository implements FoodRepository for MongoDB
type MongoFoodRepository struct {
	collection *mongo.Collection
}

// NewMongoFoodRepository creates a new MongoFoodRepository
func NewMongoFoodRepository(db *mongo.Database) *MongoFoodRepository {
	return &MongoFoodRepository{collection: db.Collection(foodsCollection)}
}

// CreateFood inserts a food item with zeroed counters
func (r *MongoFoodRepository) CreateFood(ctx context.Context, food *models.FoodItem) error {
	now := time.Now().UTC()
	food.ID = primitive.NewObjectID()
	food.LikeCount = 0
	food.SavesCount = 0
	food.CreatedAt = now
	food.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, food); err != nil {
		return fmt.Errorf("insert food: %w", err)
	}
	return nil
}

// GetFoodByID retrieves a food item by ID
func (r *MongoFoodRepository) GetFoodByID(ctx context.Context, id string) (*models.FoodItem, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var food models.FoodItem
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&food)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	return &food, nil
}

// ListFoods returns food items newest first
func (r *MongoFoodRepository) ListFoods(ctx context.Context, opts ListOptions) ([]models.FoodItem, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Skip > 0 {
		findOptions.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}
	return r.find(ctx, bson.M{}, findOptions)
}

// ListFoodsByPartner returns every food item published by a partner, newest first
func (r *MongoFoodRepository) ListFoodsByPartner(ctx context.Context, partnerID string) ([]models.FoodItem, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"foodPartner": partnerID}, findOptions)
}

func (r *MongoFoodRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.FoodItem, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	foods := []models.FoodItem{}
	if err = cursor.All(ctx, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}
