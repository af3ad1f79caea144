package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementKind distinguishes likes from saves. Both share one document shape
// and live in their own collection with their own counter on FoodItem.
type EngagementKind string

const (
	EngagementLike EngagementKind = "like"
	EngagementSave EngagementKind = "save"
)

// Collection is the MongoDB collection holding records of this kind.
func (k EngagementKind) Collection() string {
	if k == EngagementSave {
		return "saves"
	}
	return "likes"
}

// CounterField is the FoodItem field tracking the number of records of this kind.
func (k EngagementKind) CounterField() string {
	if k == EngagementSave {
		return "savesCount"
	}
	return "likeCount"
}

// Engagement is a Like or Save record: one per (user, food) pair.
type Engagement struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    string             `json:"user" bson:"user"`
	FoodID    primitive.ObjectID `json:"food" bson:"food"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ToggleResult reports the state after a like/save toggle.
type ToggleResult struct {
	Kind   EngagementKind
	Active bool
	Count  int64
	// Record is set only when the toggle created a record.
	Record *Engagement
}

// SavedFood is a Save record with its food item expanded.
type SavedFood struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	UserID    string             `json:"user" bson:"user"`
	Food      FoodItem           `json:"food" bson:"foodDoc"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ToggleRequest is the JSON body of the like and save endpoints.
type ToggleRequest struct {
	FoodID string `json:"foodId" validate:"required"`
}

func (r *ToggleRequest) Normalize() {
	r.FoodID = strings.TrimSpace(r.FoodID)
}
