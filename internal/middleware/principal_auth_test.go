package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/foodreels/backend/internal/auth"
	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "middleware-test-secret-0123456789abcdef"

type authFixture struct {
	e      *echo.Echo
	tokens *auth.TokenManager
	users  map[string]*models.User
	loads  int
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens, err := auth.NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	f := &authFixture{
		e:      echo.New(),
		tokens: tokens,
		users:  map[string]*models.User{"u1": {ID: "u1", Email: "ann@example.com"}},
	}
	f.e.HTTPErrorHandler = ErrorHandler

	mw := RequirePrincipal(PrincipalAuthConfig{
		Tokens: tokens,
		Role:   models.RoleUser,
		Load: func(ctx context.Context, id string) (models.Principal, error) {
			f.loads++
			if id == "boom" {
				return nil, errors.New("connection reset")
			}
			u, ok := f.users[id]
			if !ok {
				return nil, repositories.ErrNotFound
			}
			return u, nil
		},
		MissingMessage:  "Please login as user first",
		NotFoundMessage: "User not found",
	})

	f.e.GET("/me", func(c echo.Context) error {
		u, ok := CurrentUser(c)
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, "no user in context")
		}
		return c.JSON(http.StatusOK, echo.Map{"id": u.ID})
	}, mw)
	return f
}

func (f *authFixture) do(t *testing.T, req *http.Request) (int, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec.Code, body
}

func (f *authFixture) token(t *testing.T, p models.Principal) string {
	t.Helper()
	tok, err := f.tokens.Issue(p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return tok
}

func expiredToken(t *testing.T, id string) string {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		ID:   id,
		Role: models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return tok
}

func TestRequirePrincipal_BearerHeader(t *testing.T) {
	f := newAuthFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, f.users["u1"]))

	code, body := f.do(t, req)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", code, body)
	}
	if body["id"] != "u1" {
		t.Errorf("Expected principal u1 in context, got %v", body)
	}
}

func TestRequirePrincipal_CookieTakesPrecedence(t *testing.T) {
	f := newAuthFixture(t)
	f.users["u2"] = &models.User{ID: "u2"}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: f.token(t, f.users["u2"])})
	req.Header.Set("Authorization", "Bearer "+f.token(t, f.users["u1"]))

	code, body := f.do(t, req)
	if code != http.StatusOK || body["id"] != "u2" {
		t.Fatalf("Expected cookie principal u2, got %d %v", code, body)
	}
}

func TestRequirePrincipal_Failures(t *testing.T) {
	f := newAuthFixture(t)
	partnerToken := f.token(t, &models.FoodPartner{ID: "u1"})

	tests := []struct {
		name        string
		setup       func(r *http.Request)
		wantCode    int
		wantMessage string
	}{
		{
			name:        "no token",
			setup:       func(r *http.Request) {},
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Please login as user first",
		},
		{
			name:        "non bearer scheme",
			setup:       func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Please login as user first",
		},
		{
			name:        "expired",
			setup:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expiredToken(t, "u1")) },
			wantCode:    http.StatusUnauthorized,
			wantMessage: MsgSessionExpired,
		},
		{
			name:        "malformed",
			setup:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
			wantCode:    http.StatusUnauthorized,
			wantMessage: MsgInvalidToken,
		},
		{
			name:        "token for another role",
			setup:       func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: partnerToken}) },
			wantCode:    http.StatusUnauthorized,
			wantMessage: MsgInvalidToken,
		},
		{
			name:        "principal missing",
			setup:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+f.token(t, &models.User{ID: "ghost"})) },
			wantCode:    http.StatusNotFound,
			wantMessage: "User not found",
		},
		{
			name:        "lookup failure",
			setup:       func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+f.token(t, &models.User{ID: "boom"})) },
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Failed to load account",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)

			code, body := f.do(t, req)
			if code != tc.wantCode {
				t.Errorf("Expected status %d, got %d", tc.wantCode, code)
			}
			if body["message"] != tc.wantMessage {
				t.Errorf("Expected message %q, got %q", tc.wantMessage, body["message"])
			}
		})
	}
}

func TestRequirePrincipal_ExpiredAndInvalidAreDistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	expired := httptest.NewRequest(http.MethodGet, "/me", nil)
	expired.Header.Set("Authorization", "Bearer "+expiredToken(t, "u1"))
	invalid := httptest.NewRequest(http.MethodGet, "/me", nil)
	invalid.Header.Set("Authorization", "Bearer "+expiredToken(t, "u1")+"x")

	_, expiredBody := f.do(t, expired)
	_, invalidBody := f.do(t, invalid)
	if expiredBody["message"] == invalidBody["message"] {
		t.Errorf("Expected distinct messages, both were %q", expiredBody["message"])
	}
	if f.loads != 0 {
		t.Errorf("Rejected tokens must not reach the principal lookup, got %d loads", f.loads)
	}
}

func TestErrorHandler_HidesInternalCause(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error creating food").
			SetInternal(errors.New("s3: AccessDenied for arn:aws:iam::123:user/secret"))
	})
	e.GET("/plain", func(c echo.Context) error {
		return errors.New("database exploded")
	})

	for path, wantMessage := range map[string]string{"/fail": "Error creating food", "/plain": "Internal Server Error"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", path, rec.Code)
		}
		var body map[string]string
		json.Unmarshal(rec.Body.Bytes(), &body)
		if body["message"] != wantMessage || body["error"] != "Internal Server Error" {
			t.Errorf("%s: unexpected body %v", path, body)
		}
	}
}

func TestErrorHandler_NotFoundRoute(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Not Found" {
		t.Errorf("Expected message Not Found, got %v", body)
	}
	if _, ok := body["error"]; ok {
		t.Error("Client errors should not carry an error field")
	}
}
