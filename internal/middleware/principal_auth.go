package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/foodreels/backend/internal/auth"
	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// TokenCookie is the name of the HTTP-only session cookie.
const TokenCookie = "token"

const (
	MsgSessionExpired = "Session expired, please login again"
	MsgInvalidToken   = "Invalid or unauthorized token"
)

// PrincipalLoader looks a principal up by the ID embedded in its token.
// It returns repositories.ErrNotFound when no such principal exists.
type PrincipalLoader func(ctx context.Context, id string) (models.Principal, error)

// PrincipalAuthConfig parameterizes RequirePrincipal for one kind of principal.
type PrincipalAuthConfig struct {
	Tokens          *auth.TokenManager
	Role            models.Role
	Load            PrincipalLoader
	MissingMessage  string
	NotFoundMessage string
}

// RequirePrincipal authenticates the request with the session token from the
// "token" cookie or the Authorization bearer header (the cookie wins), loads
// the principal and stores it in the context under its role.
func RequirePrincipal(cfg PrincipalAuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := extractToken(c.Request())
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, cfg.MissingMessage)
			}

			claims, err := cfg.Tokens.Parse(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, MsgSessionExpired).SetInternal(err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken).SetInternal(err)
			}
			if claims.Role != cfg.Role {
				return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidToken)
			}

			principal, err := cfg.Load(c.Request().Context(), claims.ID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, cfg.NotFoundMessage)
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load account").SetInternal(err)
			}

			c.Set(string(cfg.Role), principal)
			return next(c)
		}
	}
}

// RequireUser is RequirePrincipal for end users.
func RequireUser(tokens *auth.TokenManager, users repositories.UserRepository) echo.MiddlewareFunc {
	return RequirePrincipal(PrincipalAuthConfig{
		Tokens: tokens,
		Role:   models.RoleUser,
		Load: func(ctx context.Context, id string) (models.Principal, error) {
			return users.GetUserByID(ctx, id)
		},
		MissingMessage:  "Please login as user first",
		NotFoundMessage: "User not found",
	})
}

// RequireFoodPartner is RequirePrincipal for food partners.
func RequireFoodPartner(tokens *auth.TokenManager, partners repositories.FoodPartnerRepository) echo.MiddlewareFunc {
	return RequirePrincipal(PrincipalAuthConfig{
		Tokens: tokens,
		Role:   models.RoleFoodPartner,
		Load: func(ctx context.Context, id string) (models.Principal, error) {
			return partners.GetFoodPartnerByID(ctx, id)
		},
		MissingMessage:  "Please login as food partner first",
		NotFoundMessage: "Food Partner not found",
	})
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(string(models.RoleUser)).(*models.User)
	return u, ok && u != nil
}

// CurrentFoodPartner returns the food partner stored by RequireFoodPartner.
func CurrentFoodPartner(c echo.Context) (*models.FoodPartner, bool) {
	p, ok := c.Get(string(models.RoleFoodPartner)).(*models.FoodPartner)
	return p, ok && p != nil
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.Fields(r.Header.Get(echo.HeaderAuthorization))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
