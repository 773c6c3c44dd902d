package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventcard/terminal/internal/tokens"
)

var secret = []byte("test-secret")

func sign(t *testing.T, role, terminal string) string {
	t.Helper()
	tok, err := tokens.SignAccessToken("42", role, terminal, time.Minute, secret)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, req *http.Request, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return rec, c, h(c)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestMiddleware_Cookie(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: sign(t, RoleCashier, "caja-2")})

	rec, c, err := run(t, req, Middleware(secret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "42", UserID(c))
	assert.Equal(t, RoleCashier, Role(c))
	assert.Equal(t, "caja-2", TerminalID(c))
	assert.False(t, UsesBearer(c))
}

func TestMiddleware_Bearer(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+sign(t, RoleOperator, ""))

	_, c, err := run(t, req, Middleware(secret))
	require.NoError(t, err)
	assert.Equal(t, "42", TerminalID(c))
	assert.True(t, UsesBearer(c))
}

func TestMiddleware_Rejects(t *testing.T) {
	t.Parallel()

	missing := httptest.NewRequest(http.MethodGet, "/", nil)
	_, _, err := run(t, missing, Middleware(secret))
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: AccessCookie, Value: "garbage"})
	_, _, err = run(t, bad, Middleware(secret))
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin allowed", RoleAdmin, http.StatusNoContent},
		{"operator forbidden", RoleOperator, http.StatusForbidden},
		{"cashier forbidden", RoleCashier, http.StatusForbidden},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: AccessCookie, Value: sign(t, tt.role, "")})

			rec, _, err := run(t, req, Middleware(secret), RequireRole(RoleAdmin))
			if tt.want == http.StatusNoContent {
				require.NoError(t, err)
				assert.Equal(t, tt.want, rec.Code)
				return
			}
			assert.Equal(t, tt.want, httpStatus(t, err))
		})
	}
}
