package middleware

import (
	"net/http"
	"strings"

	"github.com/Skotchmaster/bigbrew_pos/pkg/tokens"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"

	accessCookie = "accessToken"
)

// StaffAuth reads staff access tokens from the Authorization header or the
// accessToken cookie. With an empty secret auth is off: anonymous requests pass
// and admin routes are refused.
type StaffAuth struct {
	JWTSecret []byte
}

func NewStaffAuth(secret []byte) *StaffAuth {
	return &StaffAuth{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *StaffAuth) Enabled() bool {
	return len(m.JWTSecret) > 0
}

// Optional attaches the caller's claims when a token is present. A token that
// is present but invalid is rejected.
func (m *StaffAuth) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearer(c)
		if raw == "" || !m.Enabled() {
			return next(c)
		}
		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

func (m *StaffAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, nil)
}

func (m *StaffAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(claims *tokens.AccessClaims) error {
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *StaffAuth) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.Enabled() {
			return echo.NewHTTPError(http.StatusForbidden, "staff auth is not configured")
		}

		raw := bearer(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if ck, err := c.Cookie(accessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
}
