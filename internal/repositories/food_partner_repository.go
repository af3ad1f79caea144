package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/foodreels/backend/internal/models"
	"gorm.io/gorm"
)

// FoodPartnerRepository defines the interface for food partner data operations
type FoodPartnerRepository interface {
	CreateFoodPartner(ctx context.Context, partner *models.FoodPartner) error
	GetFoodPartnerByID(ctx context.Context, id string) (*models.FoodPartner, error)
	GetFoodPartnerByEmail(ctx context.Context, email string) (*models.FoodPartner, error)
	// GetFoodPartnersByIDs returns the partners that exist, keyed by ID.
	GetFoodPartnersByIDs(ctx context.Context, ids []string) (map[string]*models.FoodPartner, error)
}

// PostgresFoodPartnerRepository implements FoodPartnerRepository for PostgreSQL
type PostgresFoodPartnerRepository struct {
	db *gorm.DB
}

func NewPostgresFoodPartnerRepository(db *gorm.DB) *PostgresFoodPartnerRepository {
	return &PostgresFoodPartnerRepository{db: db}
}

func (r *PostgresFoodPartnerRepository) CreateFoodPartner(ctx context.Context, partner *models.FoodPartner) error {
	return translateError(r.db.WithContext(ctx).Create(partner).Error)
}

func (r *PostgresFoodPartnerRepository) GetFoodPartnerByID(ctx context.Context, id string) (*models.FoodPartner, error) {
	var partner models.FoodPartner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error; err != nil {
		return nil, translateError(err)
	}
	return &partner, nil
}

func (r *PostgresFoodPartnerRepository) GetFoodPartnerByEmail(ctx context.Context, email string) (*models.FoodPartner, error) {
	var partner models.FoodPartner
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&partner).Error; err != nil {
		return nil, translateError(err)
	}
	return &partner, nil
}

func (r *PostgresFoodPartnerRepository) GetFoodPartnersByIDs(ctx context.Context, ids []string) (map[string]*models.FoodPartner, error) {
	result := make(map[string]*models.FoodPartner, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var partners []models.FoodPartner
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&partners).Error; err != nil {
		return nil, fmt.Errorf("load food partners: %w", err)
	}
	for i := range partners {
		result[partners[i].ID] = &partners[i]
	}
	return result, nil
}
