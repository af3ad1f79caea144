package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/foodreels/backend/internal/logging"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as {"message": ...}. Server errors add a
// generic "error" field; their internal cause is logged, never sent.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case error:
			message = m.Error()
		default:
			message = fmt.Sprint(m)
		}
		if he.Internal != nil {
			err = he.Internal
		}
	}

	body := map[string]string{"message": message}
	if code >= http.StatusInternalServerError {
		body["error"] = http.StatusText(code)
		logging.Error().Err(err).
			Str("method", c.Request().Method).
			Str("uri", c.Request().RequestURI).
			Int("status", code).
			Msg(message)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, body)
	}
	if writeErr != nil {
		logging.Error().Err(writeErr).Msg("failed to write error response")
	}
}
