package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/foodreels/backend/internal/logging"
	"github.com/anonto42/foodreels/backend/internal/metrics"
	"github.com/anonto42/foodreels/backend/internal/middleware"
	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

type toggleMessages struct {
	added, removed      string
	recordKey, countKey string
	failed              string
}

var toggleText = map[models.EngagementKind]toggleMessages{
	models.EngagementLike: {
		added:     "Food liked successfully",
		removed:   "Food unliked successfully",
		recordKey: "like",
		countKey:  "likeCount",
		failed:    "Like error",
	},
	models.EngagementSave: {
		added:     "Food saved successfully",
		removed:   "Food unsaved successfully",
		recordKey: "save",
		countKey:  "savesCount",
		failed:    "Save error",
	},
}

// EngagementHandler handles likes and saves
type EngagementHandler struct {
	engagements repositories.EngagementRepository
	partners    repositories.FoodPartnerRepository
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engagements repositories.EngagementRepository, partners repositories.FoodPartnerRepository) *EngagementHandler {
	return &EngagementHandler{
		engagements: engagements,
		partners:    partners,
	}
}

// RegisterEngagementRoutes registers like/save routes; all require a user.
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group, userAuth echo.MiddlewareFunc) {
	g.POST("/like", h.ToggleLike, userAuth)
	g.POST("/save", h.ToggleSave, userAuth)
	g.GET("/save", h.GetSavedFoods, userAuth)
}

// ToggleLike likes the food, or removes the like if one exists
func (h *EngagementHandler) ToggleLike(c echo.Context) error {
	return h.toggle(c, models.EngagementLike)
}

// ToggleSave saves the food, or removes the save if one exists
func (h *EngagementHandler) ToggleSave(c echo.Context) error {
	return h.toggle(c, models.EngagementSave)
}

func (h *EngagementHandler) toggle(c echo.Context, kind models.EngagementKind) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ToggleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	text := toggleText[kind]
	result, err := h.engagements.Toggle(c.Request().Context(), kind, user.ID, req.FoodID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvalidID):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid food id")
		case errors.Is(err, repositories.ErrFoodNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Food not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, text.failed).SetInternal(err)
		}
	}

	state := "removed"
	if result.Active {
		state = "added"
	}
	metrics.EngagementToggles.WithLabelValues(string(kind), state).Inc()
	logging.Debug().
		Str("kind", string(kind)).
		Str("state", state).
		Str("user_id", user.ID).
		Str("food_id", req.FoodID).
		Int64("count", result.Count).
		Msg("engagement toggled")

	if !result.Active {
		return c.JSON(http.StatusOK, echo.Map{
			"message":     text.removed,
			text.countKey: result.Count,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      text.added,
		text.recordKey: result.Record,
		text.countKey:  result.Count,
	})
}

// GetSavedFoods returns the user's saved food items, newest save first.
// A user with no saves gets an empty list.
func (h *EngagementHandler) GetSavedFoods(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	saved, err := h.engagements.ListSaved(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Fetch saved foods error").SetInternal(err)
	}

	foods := make([]*models.FoodItem, len(saved))
	for i := range saved {
		foods[i] = &saved[i].Food
	}
	if err := attachPartners(ctx, h.partners, foods); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Fetch saved foods error").SetInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Saved foods retrieved successfully",
		"savedFoods": saved,
	})
}
