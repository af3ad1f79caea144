package handlers

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	appauth "github.com/anonto42/foodreels/backend/internal/auth"
	"github.com/anonto42/foodreels/backend/internal/logging"
	"github.com/anonto42/foodreels/backend/internal/middleware"
	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Invalid email or password"

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler handles registration, login and logout for users and food partners
type AuthHandler struct {
	users        repositories.UserRepository
	partners     repositories.FoodPartnerRepository
	tokens       *appauth.TokenManager
	firebase     IDTokenVerifier
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. firebase may be nil, in which case
// the Firebase login route is not registered.
func NewAuthHandler(users repositories.UserRepository, partners repositories.FoodPartnerRepository, tm *appauth.TokenManager, firebase IDTokenVerifier, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		users:        users,
		partners:     partners,
		tokens:       tm,
		firebase:     firebase,
		cookieSecure: cookieSecure,
	}
}

// RegisterUserAuthRoutes registers user auth routes; limit guards the
// credential-checking endpoints.
func (h *AuthHandler) RegisterUserAuthRoutes(g *echo.Group, limit echo.MiddlewareFunc) {
	g.POST("/register", h.RegisterUser, limit)
	g.POST("/login", h.LoginUser, limit)
	g.GET("/logout", h.LogoutUser)
	if h.firebase != nil {
		g.POST("/firebase-login", h.FirebaseLogin, limit)
	}
}

// RegisterFoodPartnerAuthRoutes registers food partner auth routes.
func (h *AuthHandler) RegisterFoodPartnerAuthRoutes(g *echo.Group, limit echo.MiddlewareFunc) {
	g.POST("/register", h.RegisterFoodPartner, limit)
	g.POST("/login", h.LoginFoodPartner, limit)
	g.GET("/logout", h.LogoutFoodPartner)
}

// RegisterUser creates a user with a bcrypt password and starts a session
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var req models.RegisterUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hash,
	}
	if err := h.users.CreateUser(c.Request().Context(), user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register user").SetInternal(err)
	}

	token, err := h.startSession(c, user)
	if err != nil {
		return err
	}

	logging.Info().Str("user_id", user.ID).Msg("user registered")
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// LoginUser checks email and password and starts a session
func (h *AuthHandler) LoginUser(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidCredentials)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to login").SetInternal(err)
	}
	if !checkPassword(user.Password, req.Password) {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidCredentials)
	}

	token, err := h.startSession(c, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User logged in successfully",
		"user":    user,
		"token":   token,
	})
}

// LogoutUser clears the session cookie
func (h *AuthHandler) LogoutUser(c echo.Context) error {
	h.clearSession(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "User logged out successfully"})
}

// RegisterFoodPartner creates a food partner account and starts a session
func (h *AuthHandler) RegisterFoodPartner(c echo.Context) error {
	var req models.RegisterFoodPartnerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}

	partner := &models.FoodPartner{
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Address:     req.Address,
		Email:       req.Email,
		Password:    hash,
	}
	if err := h.partners.CreateFoodPartner(c.Request().Context(), partner); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return echo.NewHTTPError(http.StatusBadRequest, "Food partner account already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register food partner").SetInternal(err)
	}

	token, err := h.startSession(c, partner)
	if err != nil {
		return err
	}

	logging.Info().Str("food_partner_id", partner.ID).Msg("food partner registered")
	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "Food partner registered successfully",
		"foodPartner": partner,
		"token":       token,
	})
}

// LoginFoodPartner checks email and password and starts a session
func (h *AuthHandler) LoginFoodPartner(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	partner, err := h.partners.GetFoodPartnerByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidCredentials)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to login").SetInternal(err)
	}
	if !checkPassword(partner.Password, req.Password) {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidCredentials)
	}

	token, err := h.startSession(c, partner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Food partner logged in successfully",
		"foodPartner": partner,
		"token":       token,
	})
}

// LogoutFoodPartner clears the session cookie
func (h *AuthHandler) LogoutFoodPartner(c echo.Context) error {
	h.clearSession(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Food partner logged out successfully"})
}

// FirebaseLogin verifies a Firebase ID token, links or creates the matching
// user and issues a local session token
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token").SetInternal(err)
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email address")
	}
	email = models.NormalizeEmail(email)
	name, _ := token.Claims["name"].(string)
	uid := token.UID

	user, err := h.users.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
		// Already linked.
	case errors.Is(err, repositories.ErrNotFound):
		user, err = h.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			user.FirebaseUID = &uid
			if err := h.users.UpdateUser(ctx, user); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to link Firebase account").SetInternal(err)
			}
		case errors.Is(err, repositories.ErrNotFound):
			user = &models.User{FullName: name, Email: email, FirebaseUID: &uid}
			if err := h.users.CreateUser(ctx, user); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user").SetInternal(err)
			}
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to login").SetInternal(err)
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to login").SetInternal(err)
	}

	session, err := h.startSession(c, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User logged in successfully",
		"user":    user,
		"token":   session,
	})
}

// startSession issues a token for p and sets it as the session cookie.
func (h *AuthHandler) startSession(c echo.Context, p models.Principal) (string, error) {
	token, err := h.tokens.Issue(p)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token").SetInternal(err)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func (h *AuthHandler) clearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password").SetInternal(err)
	}
	return string(hash), nil
}

// checkPassword reports whether password matches hash. Accounts created
// through Firebase have no local password and never match.
func checkPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
