package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FoodPartner is a restaurant or cook account that publishes food videos.
type FoodPartner struct {
	ID          string    `json:"_id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name"`
	ContactName string    `json:"contactName"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *FoodPartner) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *FoodPartner) PrincipalID() string { return p.ID }
func (p *FoodPartner) PrincipalRole() Role { return RoleFoodPartner }

// Summary is the public projection attached to food items.
func (p *FoodPartner) Summary() *PartnerSummary {
	return &PartnerSummary{ID: p.ID, Name: p.Name, Email: p.Email}
}

// PartnerSummary is the partner name/email shown alongside a food item.
type PartnerSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterFoodPartnerRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	ContactName string `json:"contactName" validate:"required,max=80"`
	Phone       string `json:"phone" validate:"required,max=32"`
	Address     string `json:"address" validate:"required,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

func (r *RegisterFoodPartnerRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ContactName = strings.TrimSpace(r.ContactName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.Email = NormalizeEmail(r.Email)
}
