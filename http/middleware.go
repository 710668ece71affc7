package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const adminSecretHeader = "X-Admin-Secret"

// requireAdmin guards the admin surface with a shared secret. An unset secret
// keeps the surface closed rather than open.
func (s Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.adminSecret == "" {
			return echo.NewHTTPError(http.StatusServiceUnavailable, errorBody{Error: "admin_disabled"})
		}

		provided := c.Request().Header.Get(adminSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(s.adminSecret)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		}

		return next(c)
	}
}
