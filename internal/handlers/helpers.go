package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/anonto42/foodreels/backend/internal/validators"
	"github.com/labstack/echo/v4"
)

type normalizer interface {
	Normalize()
}

// bindAndValidate binds the request into req, normalizes it when it knows
// how, and runs the registered validator on the result.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload").SetInternal(err)
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Describe(err)).SetInternal(err)
	}
	return nil
}

// attachPartners sets Partner on every food item whose partner still exists.
func attachPartners(ctx context.Context, partners repositories.FoodPartnerRepository, foods []*models.FoodItem) error {
	if len(foods) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(foods))
	ids := make([]string, 0, len(foods))
	for _, f := range foods {
		if _, ok := seen[f.FoodPartnerID]; ok {
			continue
		}
		seen[f.FoodPartnerID] = struct{}{}
		ids = append(ids, f.FoodPartnerID)
	}

	byID, err := partners.GetFoodPartnersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, f := range foods {
		if p, ok := byID[f.FoodPartnerID]; ok {
			f.Partner = p.Summary()
		}
	}
	return nil
}

func foodPointers(foods []models.FoodItem) []*models.FoodItem {
	ptrs := make([]*models.FoodItem, len(foods))
	for i := range foods {
		ptrs[i] = &foods[i]
	}
	return ptrs
}
