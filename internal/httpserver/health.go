package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// ready reports whether the card backend answers.
func ready(p Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logging.FromContext(ctx).Warn("readiness_failed", zap.Error(err))
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}
