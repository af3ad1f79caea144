package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoodItem is a short food video published by a food partner, stored in MongoDB.
// LikeCount and SavesCount always equal the number of Like/Save records that
// reference the item; they are only changed inside a toggle transaction.
type FoodItem struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Video         string             `json:"video" bson:"video"`
	FoodPartnerID string             `json:"foodPartner" bson:"foodPartner"`
	LikeCount     int64              `json:"likeCount" bson:"likeCount"`
	SavesCount    int64              `json:"savesCount" bson:"savesCount"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`

	// Partner is attached from the principal store when listing; never persisted.
	Partner *PartnerSummary `json:"partner,omitempty" bson:"-"`
}

// Counter returns the denormalized counter that belongs to kind.
func (f *FoodItem) Counter(kind EngagementKind) int64 {
	if kind == EngagementSave {
		return f.SavesCount
	}
	return f.LikeCount
}

// CreateFoodRequest is bound from the multipart form of POST /api/food.
// The video itself is read separately from the "video" file part.
type CreateFoodRequest struct {
	Name        string `form:"name" validate:"required,min=1,max=120"`
	Description string `form:"description" validate:"max=2000"`
}

// Normalize trims surrounding whitespace so blank names fail validation.
func (r *CreateFoodRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}
