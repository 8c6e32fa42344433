package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

const (
	principalKey = "principal"
	tokenKey     = "access_token"
)

// Authenticate resolves the bearer token through the guard and injects the
// principal and the raw token into context. Any failure is
// domain.ErrUnauthenticated.
func Authenticate(guard ports.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrUnauthenticated
			}

			principal, err := guard.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(principalKey, principal)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal set by Authenticate, or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

// TokenFrom returns the raw bearer token set by Authenticate.
func TokenFrom(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
