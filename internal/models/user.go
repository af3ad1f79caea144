package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an end user who browses, likes and saves food videos.
type User struct {
	ID          string    `json:"_id" gorm:"type:uuid;primaryKey"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-"`                                        // bcrypt hash
	FirebaseUID *string   `json:"firebaseUid,omitempty" gorm:"uniqueIndex"` // set when linked through Firebase login
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) PrincipalID() string { return u.ID }
func (u *User) PrincipalRole() Role { return RoleUser }

type RegisterUserRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Normalize trims the profile fields and lowercases the email.
func (r *RegisterUserRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = NormalizeEmail(r.Email)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// NormalizeEmail returns the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
