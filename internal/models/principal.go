package models

// Role names the kind of principal a token was issued to.
type Role string

const (
	RoleUser        Role = "user"
	RoleFoodPartner Role = "food-partner"
)

// Principal is an authenticated actor: a User or a FoodPartner.
type Principal interface {
	PrincipalID() string
	PrincipalRole() Role
}
