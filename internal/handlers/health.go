package handlers

import (
	"net/http"

	"github.com/anonto42/foodreels/backend/internal/storage"
	"github.com/labstack/echo/v4"
	gobreaker "github.com/sony/gobreaker/v2"
)

type breakerState interface {
	State() gobreaker.State
}

// HealthCheck reports the service as degraded while the storage breaker is
// open. Uploads fail then but browsing still works, so the status stays 200.
func HealthCheck(store storage.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := map[string]string{
			"status":  "healthy",
			"service": "foodreels-api",
		}
		if b, ok := store.(breakerState); ok {
			state := b.State()
			body["storage"] = state.String()
			if state == gobreaker.StateOpen {
				body["status"] = "degraded"
			}
		}
		return c.JSON(http.StatusOK, body)
	}
}
