package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

type SweetHandler struct {
	inventory ports.InventoryService
	catalog   ports.CatalogService
}

func NewSweetHandler(inventory ports.InventoryService, catalog ports.CatalogService) *SweetHandler {
	return &SweetHandler{inventory: inventory, catalog: catalog}
}

// Create adds a sweet to the catalogue.
//
// @Summary      Create a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSweetRequest  true  "Sweet attributes"
// @Success      200   {object}  sweetResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /api/sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req createSweetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sweet, err := h.inventory.Create(c.Request().Context(), ctxPrincipal(c), ports.CreateSweetInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    *req.Price,
		Quantity: *req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}

// List returns the catalogue in creation order.
//
// @Summary      List sweets
// @Tags         sweets
// @Produce      json
// @Param        skip   query     int  false  "Records to skip"   default(0)
// @Param        limit  query     int  false  "Maximum records"   default(100)
// @Success      200    {array}   sweetResponse
// @Failure      422    {object}  messageResponse
// @Router       /api/sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}

	sweets, err := h.catalog.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponses(sweets))
}

// Search filters the catalogue. All criteria are optional and combined with AND.
//
// @Summary      Search sweets
// @Tags         sweets
// @Produce      json
// @Param        name       query     string  false  "Case-insensitive name fragment"
// @Param        category   query     string  false  "Exact category"
// @Param        min_price  query     number  false  "Inclusive lower price bound"
// @Param        max_price  query     number  false  "Inclusive upper price bound"
// @Param        skip       query     int     false  "Records to skip"  default(0)
// @Param        limit      query     int     false  "Maximum records"  default(100)
// @Success      200        {array}   sweetResponse
// @Failure      422        {object}  messageResponse
// @Router       /api/sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	page, err := pageFromQuery(c)
	if err != nil {
		return err
	}
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	sweets, err := h.catalog.Search(c.Request().Context(), filter, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponses(sweets))
}

// Get returns a single sweet.
//
// @Summary      Get a sweet
// @Tags         sweets
// @Produce      json
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  sweetResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/sweets/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	sweet, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}

// UpdatePrice replaces the price of a sweet.
//
// @Summary      Update a sweet's price
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Sweet ID"
// @Param        body  body      updatePriceRequest  true  "New price"
// @Success      200   {object}  sweetResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /api/sweets/{id} [put]
func (h *SweetHandler) UpdatePrice(c echo.Context) error {
	var req updatePriceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sweet, err := h.inventory.UpdatePrice(c.Request().Context(), ctxPrincipal(c), c.Param("id"), *req.Price)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}

// Delete removes a sweet.
//
// @Summary      Delete a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	if err := h.inventory.Delete(c.Request().Context(), ctxPrincipal(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Detail: "sweet deleted"})
}

// Purchase buys one unit of a sweet.
//
// @Summary      Purchase a sweet
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  sweetResponse
// @Failure      400  {object}  messageResponse  "Out of stock"
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	sweet, err := h.inventory.Purchase(c.Request().Context(), ctxPrincipal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}

// Restock adds units to a sweet.
//
// @Summary      Restock a sweet
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Sweet ID"
// @Param        body  body      restockRequest  true  "Units to add"
// @Success      200   {object}  sweetResponse
// @Failure      401   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /api/sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	var req restockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sweet, err := h.inventory.Restock(c.Request().Context(), ctxPrincipal(c), c.Param("id"), *req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSweetResponse(sweet))
}

func pageFromQuery(c echo.Context) (ports.Page, error) {
	page := ports.Page{Limit: ports.DefaultPageLimit}
	err := echo.QueryParamsBinder(c).
		Int("skip", &page.Skip).
		Int("limit", &page.Limit).
		BindError()
	if err != nil {
		var be *echo.BindingError
		if errors.As(err, &be) {
			return page, domain.Invalid(be.Field, "must be an integer")
		}
		return page, err
	}
	return page, nil
}

func filterFromQuery(c echo.Context) (ports.SweetFilter, error) {
	var f ports.SweetFilter

	if v := c.QueryParam("name"); v != "" {
		f.Name = &v
	}
	if v := c.QueryParam("category"); v != "" {
		f.Category = &v
	}

	var err error
	if f.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		return f, err
	}
	return f, nil
}

func decimalQuery(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.Invalid(name, "must be a number")
	}
	return &d, nil
}
