package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/foodreels/backend/internal/storage"
	"github.com/anonto42/foodreels/backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func TestHealthCheck_ReportsStorageBreaker(t *testing.T) {
	fake := testutil.NewFakeStorage()
	breaker := storage.NewBreakerProvider(fake, storage.BreakerSettings{
		MaxRequests: 1, Interval: time.Minute, Timeout: time.Hour, FailureThreshold: 1,
	})

	e := echo.New()
	e.GET("/health", HealthCheck(breaker))
	check := func() map[string]string {
		t.Helper()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var body map[string]string
		testutil.DecodeJSON(t, rec, &body)
		return body
	}

	if body := check(); body["status"] != "healthy" || body["storage"] != "closed" {
		t.Errorf("Unexpected healthy body %v", body)
	}

	fake.Err = errors.New("upstream down")
	if _, err := breaker.Upload(context.Background(), "foods/a.mp4", []byte("x"), "video/mp4"); err == nil {
		t.Fatal("Expected upload failure")
	}
	if body := check(); body["status"] != "degraded" || body["storage"] != "open" {
		t.Errorf("Unexpected degraded body %v", body)
	}
}

func TestHealthCheck_PlainProvider(t *testing.T) {
	e := echo.New()
	e.GET("/health", HealthCheck(testutil.NewFakeStorage()))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]string
	testutil.DecodeJSON(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", body)
	}
	if _, ok := body["storage"]; ok {
		t.Errorf("Plain providers have no breaker state, got %v", body)
	}
}
