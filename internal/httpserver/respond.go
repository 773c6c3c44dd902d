package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eventcard/terminal/internal/domain"
	"github.com/eventcard/terminal/internal/logging"
)

// envelope mirrors the backend response shape so the browser client reads
// both the same way.
type envelope struct {
	Success bool        `json:"success"`
	Data    any         `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    domain.Kind `json:"kind,omitempty"`
	Field   string      `json:"field,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func statusOf(de *domain.Error) int {
	switch de.Kind {
	case domain.KindFormat:
		return http.StatusBadRequest
	case domain.KindPrecondition:
		return http.StatusConflict
	case domain.KindBusiness:
		if de.Status >= 400 && de.Status < 500 {
			return de.Status
		}
		return http.StatusUnprocessableEntity
	case domain.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail logs err under op and renders it.
func fail(c echo.Context, l *zap.Logger, op string, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		l.Error(op+"_failed", zap.Int("status", http.StatusInternalServerError), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, envelope{Error: http.StatusText(http.StatusInternalServerError)})
	}

	status := statusOf(de)
	msg := de.Message
	if msg == "" {
		if de.Kind == domain.KindTransport {
			msg = domain.ConnectionErrorMessage()
		} else {
			msg = http.StatusText(status)
		}
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("kind", string(de.Kind)),
		zap.String("reason", msg),
		zap.Error(err),
	}
	if de.Kind == domain.KindTransport {
		l.Error(op+"_failed", fields...)
	} else {
		l.Warn(op+"_failed", fields...)
	}
	return c.JSON(status, envelope{Error: msg, Kind: de.Kind, Field: de.Field})
}

func badBody(c echo.Context, l *zap.Logger, op string, err error) error {
	l.Warn(op+"_failed", zap.Int("status", http.StatusBadRequest), zap.String("reason", "invalid body"), zap.Error(err))
	return c.JSON(http.StatusBadRequest, envelope{Error: "invalid body", Kind: domain.KindFormat})
}

// ErrorHandler renders errors that escape handlers, mostly from middleware,
// in the same envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, isStr := he.Message.(string); isStr && s != "" {
			msg = s
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.JSON(he.Code, envelope{Error: msg})
		return
	}

	l := logging.FromContext(c.Request().Context())
	_ = fail(c, l, "request", err)
}
