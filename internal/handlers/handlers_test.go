package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/anonto42/foodreels/backend/internal/auth"
	"github.com/anonto42/foodreels/backend/internal/middleware"
	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/testutil"
	"github.com/anonto42/foodreels/backend/internal/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// mp4Header is enough of an ISO BMFF header for content sniffing.
var mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'}

type testServer struct {
	e       *echo.Echo
	store   *testutil.MemoryStore
	storage *testutil.FakeStorage
	tokens  *auth.TokenManager
}

func noLimit(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := auth.NewTokenManager("handlers-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	s := &testServer{
		e:       echo.New(),
		store:   testutil.NewMemoryStore(),
		storage: testutil.NewFakeStorage(),
		tokens:  tokens,
	}
	s.e.HTTPErrorHandler = middleware.ErrorHandler
	s.e.Validator = validators.NewValidator()

	userAuth := middleware.RequireUser(tokens, s.store)
	partnerAuth := middleware.RequireFoodPartner(tokens, s.store)

	authHandler := NewAuthHandler(s.store, s.store, tokens, nil, false)
	authHandler.RegisterUserAuthRoutes(s.e.Group("/api/auth/user"), noLimit)
	partnerGroup := s.e.Group("/api/food-partner")
	authHandler.RegisterFoodPartnerAuthRoutes(partnerGroup, noLimit)
	NewFoodPartnerHandler(s.store, s.store).RegisterFoodPartnerRoutes(partnerGroup, userAuth)

	foodGroup := s.e.Group("/api/food")
	NewFoodHandler(s.store, s.store, s.storage).RegisterFoodRoutes(foodGroup, partnerAuth, userAuth, eMiddleware.BodyLimit("1M"))
	NewEngagementHandler(s.store, s.store).RegisterEngagementRoutes(foodGroup, userAuth)
	return s
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) bearer(t *testing.T, req *http.Request, p models.Principal) *http.Request {
	t.Helper()
	token, err := s.tokens.Issue(p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func (s *testServer) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test User", Email: email}
	if err := s.store.CreateUser(t.Context(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func (s *testServer) seedPartner(t *testing.T, email string) *models.FoodPartner {
	t.Helper()
	p := &models.FoodPartner{Name: "Taco Town", Email: email}
	if err := s.store.CreateFoodPartner(t.Context(), p); err != nil {
		t.Fatalf("CreateFoodPartner failed: %v", err)
	}
	return p
}

func (s *testServer) seedFood(t *testing.T, partnerID, name string) *models.FoodItem {
	t.Helper()
	f := &models.FoodItem{Name: name, Video: "https://cdn.test/" + name, FoodPartnerID: partnerID}
	if err := s.store.CreateFood(t.Context(), f); err != nil {
		t.Fatalf("CreateFood failed: %v", err)
	}
	return f
}

// newUploadRequest builds a multipart POST /api/food. A nil video omits the file part.
func newUploadRequest(t *testing.T, fields map[string]string, filename string, video []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	if video != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="video"; filename="`+filename+`"`)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart failed: %v", err)
		}
		part.Write(video)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/food", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}
