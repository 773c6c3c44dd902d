package loggingmw

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/logging"
)

func RequestLogger(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.String("url", req.URL.Path),
				zap.String("remote_ip", c.RealIP()),
				zap.String("user_agent", req.UserAgent()),
			)
			if rid != "" {
				l = l.With(zap.String("request_id", rid))
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			dur := time.Since(start)

			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}
			status := c.Response().Status

			fields := []zap.Field{
				zap.Int("status", status),
				zap.Int64("duration_ms", dur.Milliseconds()),
			}
			switch {
			case status >= 500:
				l.Error("request completed", append(fields, zap.Error(err))...)
			case status >= 400:
				l.Warn("request completed", append(fields, zap.Error(err))...)
			default:
				l.Info("request completed", append(fields, zap.Int64("bytes", c.Response().Size))...)
			}
			return nil
		}
	}
}
