package repositories

import "errors"

var (
	// ErrNotFound is returned when a principal lookup matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrFoodNotFound is returned when a food item does not exist.
	ErrFoodNotFound = errors.New("food not found")
	// ErrInvalidID is returned for identifiers that cannot be a MongoDB ObjectID.
	ErrInvalidID = errors.New("invalid id format")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)
