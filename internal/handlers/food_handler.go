package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/anonto42/foodreels/backend/internal/logging"
	"github.com/anonto42/foodreels/backend/internal/metrics"
	"github.com/anonto42/foodreels/backend/internal/middleware"
	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/anonto42/foodreels/backend/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const videoField = "video"

// FoodHandler handles HTTP requests related to food items
type FoodHandler struct {
	foods    repositories.FoodRepository
	partners repositories.FoodPartnerRepository
	storage  storage.Provider
}

// NewFoodHandler creates a new FoodHandler
func NewFoodHandler(foods repositories.FoodRepository, partners repositories.FoodPartnerRepository, store storage.Provider) *FoodHandler {
	return &FoodHandler{
		foods:    foods,
		partners: partners,
		storage:  store,
	}
}

// RegisterFoodRoutes registers food creation and listing. Uploads pass
// partnerAuth first and bodyLimit second.
func (h *FoodHandler) RegisterFoodRoutes(g *echo.Group, partnerAuth, userAuth, bodyLimit echo.MiddlewareFunc) {
	g.POST("", h.CreateFood, partnerAuth, bodyLimit)
	g.GET("", h.ListFoods, userAuth)
}

// CreateFood uploads the video to object storage and stores a new food item
func (h *FoodHandler) CreateFood(c echo.Context) error {
	partner, ok := middleware.CurrentFoodPartner(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Food partner not authenticated")
	}

	fileHeader, err := c.FormFile(videoField)
	if err != nil || fileHeader.Size == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Video file is required")
	}

	var req models.CreateFoodRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read video file").SetInternal(err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read video file").SetInternal(err)
	}

	detected := mimetype.Detect(data)
	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = detected.String()
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = detected.Extension()
	}
	key := "foods/" + uuid.NewString() + ext

	ctx := c.Request().Context()
	videoURL, err := h.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error creating food").SetInternal(err)
	}

	food := &models.FoodItem{
		Name:          req.Name,
		Description:   req.Description,
		Video:         videoURL,
		FoodPartnerID: partner.ID,
	}
	if err := h.foods.CreateFood(ctx, food); err != nil {
		logging.Error().Err(err).
			Str("object_key", key).
			Str("video_url", videoURL).
			Str("food_partner_id", partner.ID).
			Msg("food insert failed after upload, stored object is orphaned")
		return echo.NewHTTPError(http.StatusInternalServerError, "Error creating food").SetInternal(err)
	}
	food.Partner = partner.Summary()

	metrics.FoodItemsCreated.Inc()
	logging.Info().
		Str("food_id", food.ID.Hex()).
		Str("food_partner_id", partner.ID).
		Int("bytes", len(data)).
		Msg("food created")

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Food created successfully",
		"food":    food,
	})
}

// ListFoods returns food items newest first with their partner attached.
// Optional skip and limit query parameters page through the list.
func (h *FoodHandler) ListFoods(c echo.Context) error {
	var opts repositories.ListOptions
	err := echo.QueryParamsBinder(c).
		Int64("skip", &opts.Skip).
		Int64("limit", &opts.Limit).
		BindError()
	if err != nil || opts.Skip < 0 || opts.Limit < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "skip and limit must be non-negative integers")
	}

	ctx := c.Request().Context()
	foods, err := h.foods.ListFoods(ctx, opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching foods").SetInternal(err)
	}
	if err := attachPartners(ctx, h.partners, foodPointers(foods)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error fetching foods").SetInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Food items fetched successfully",
		"foodItems": foods,
	})
}
