package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// FoodPartnerHandler serves public food partner profiles
type FoodPartnerHandler struct {
	partners repositories.FoodPartnerRepository
	foods    repositories.FoodRepository
}

func NewFoodPartnerHandler(partners repositories.FoodPartnerRepository, foods repositories.FoodRepository) *FoodPartnerHandler {
	return &FoodPartnerHandler{partners: partners, foods: foods}
}

// RegisterFoodPartnerRoutes registers the profile route; viewing requires a user.
func (h *FoodPartnerHandler) RegisterFoodPartnerRoutes(g *echo.Group, userAuth echo.MiddlewareFunc) {
	g.GET("/:id", h.GetFoodPartner, userAuth)
}

// GetFoodPartner returns a partner and every food item they published
func (h *FoodPartnerHandler) GetFoodPartner(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Food partner not found")
	}

	ctx := c.Request().Context()
	partner, err := h.partners.GetFoodPartnerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Food partner not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching food partner").SetInternal(err)
	}

	foods, err := h.foods.ListFoodsByPartner(ctx, partner.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching food partner").SetInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Food partner retrieved successfully",
		"foodPartner": partner,
		"foodItems":   foods,
	})
}
