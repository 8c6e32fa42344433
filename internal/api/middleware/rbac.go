package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// RequireAdmin rejects principals without the admin role. Mount it after
// Authenticate.
func RequireAdmin(guard ports.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := guard.RequireAdmin(PrincipalFrom(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
