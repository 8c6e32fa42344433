package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweetshop-api/internal/api/middleware"
	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// ctxPrincipal returns the principal stored by the Authenticate middleware.
// A missing principal means the route was mounted without it; the ledger
// answers that with domain.ErrUnauthenticated.
func ctxPrincipal(c echo.Context) *domain.Principal {
	return middleware.PrincipalFrom(c)
}
