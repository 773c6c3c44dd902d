package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventcard/terminal/internal/tokens"
)

const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTerminal = "terminal_id"

	AccessCookie = "accessToken"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleCashier  = "cajero"
)

// Middleware accepts the access token from the accessToken cookie or an
// Authorization bearer header.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			claims, err := tokens.AccessClaimsFromToken(raw, secret)
			if err != nil || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}
			setUserContext(c, claims)
			return next(c)
		}
	}
}

func RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := Role(c)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !slices.Contains(required, role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) string {
	v, _ := c.Get(CtxUserID).(string)
	return v
}

func Role(c echo.Context) string {
	v, _ := c.Get(CtxRole).(string)
	return v
}

func TerminalID(c echo.Context) string {
	v, _ := c.Get(CtxTerminal).(string)
	return v
}

// UsesBearer reports whether the request authenticated with a header
// rather than the cookie.
func UsesBearer(c echo.Context) bool {
	return bearer(c.Request().Header.Get(echo.HeaderAuthorization)) != ""
}

func tokenFromRequest(c echo.Context) string {
	if tok := bearer(c.Request().Header.Get(echo.HeaderAuthorization)); tok != "" {
		return tok
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func bearer(h string) string {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxTerminal, claims.TerminalID())
}
