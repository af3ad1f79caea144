package router

import (
	"net/http"

	"github.com/anonto42/foodreels/backend/internal/auth"
	"github.com/anonto42/foodreels/backend/internal/handlers"
	"github.com/anonto42/foodreels/backend/internal/logging"
	"github.com/anonto42/foodreels/backend/internal/middleware"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/anonto42/foodreels/backend/internal/storage"
	"github.com/anonto42/foodreels/backend/internal/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Options holds the HTTP-level settings taken from configuration.
type Options struct {
	CORSOrigins   []string
	MaxVideoSize  string  // echo BodyLimit size, e.g. "100M"
	AuthRateLimit float64 // requests per second per client IP; <= 0 disables limiting
	CookieSecure  bool
}

// Dependencies are the collaborators injected into handlers.
type Dependencies struct {
	Users       repositories.UserRepository
	Partners    repositories.FoodPartnerRepository
	Foods       repositories.FoodRepository
	Engagements repositories.EngagementRepository
	Storage     storage.Provider
	Tokens      *auth.TokenManager
	// Firebase is optional; nil disables Firebase login.
	Firebase handlers.IDTokenVerifier
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, opts Options) {
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = validators.NewValidator()

	e.Pre(eMiddleware.RemoveTrailingSlash())
	e.Use(eMiddleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	logging.Debug().Strs("cors_origins", opts.CORSOrigins).Msg("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies, opts Options) {
	e.GET("/health", handlers.HealthCheck(deps.Storage))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	userAuth := middleware.RequireUser(deps.Tokens, deps.Users)
	partnerAuth := middleware.RequireFoodPartner(deps.Tokens, deps.Partners)
	limit := authRateLimiter(opts.AuthRateLimit)

	// --- Authentication ---
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Partners, deps.Tokens, deps.Firebase, opts.CookieSecure)
	authHandler.RegisterUserAuthRoutes(e.Group("/api/auth/user"), limit)
	authHandler.RegisterFoodPartnerAuthRoutes(e.Group("/api/auth/food-partner"), limit)

	// --- Food partners ---
	partnerGroup := e.Group("/api/food-partner")
	authHandler.RegisterFoodPartnerAuthRoutes(partnerGroup, limit)
	handlers.NewFoodPartnerHandler(deps.Partners, deps.Foods).RegisterFoodPartnerRoutes(partnerGroup, userAuth)

	// --- Food items, likes and saves ---
	foodGroup := e.Group("/api/food")
	handlers.NewFoodHandler(deps.Foods, deps.Partners, deps.Storage).
		RegisterFoodRoutes(foodGroup, partnerAuth, userAuth, eMiddleware.BodyLimit(opts.MaxVideoSize))
	handlers.NewEngagementHandler(deps.Engagements, deps.Partners).RegisterEngagementRoutes(foodGroup, userAuth)

	logging.Info().
		Int("routes", len(e.Routes())).
		Bool("firebase_login", deps.Firebase != nil).
		Msg("routes configured")
}

// authRateLimiter limits credential endpoints per client IP.
func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
		Store: eMiddleware.NewRateLimiterMemoryStore(rate.Limit(perSecond)),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}
