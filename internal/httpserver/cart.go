package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/bigbrew_pos/internal/cart"
	"github.com/Skotchmaster/bigbrew_pos/internal/transport"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/labstack/echo/v4"
)

type CartHTTP struct {
	Store *cart.Store
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.NewCartResponse(h.Store.State()))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.add")

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	h.Store.Add(req)
	l.Info("item_added", "name", req.Name, "add_on", req.IsAddOn)
	return c.JSON(http.StatusCreated, transport.NewCartResponse(h.Store.State()))
}

func (h *CartHTTP) ChangeQuantity(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.change_quantity")

	var req transport.ChangeQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("change_quantity_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	h.Store.ChangeQuantity(req.Index, req.Delta)
	return c.JSON(http.StatusOK, transport.NewCartResponse(h.Store.State()))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	h.Store.Clear()
	logging.FromContext(c.Request().Context()).Info("cart_cleared")
	return c.JSON(http.StatusOK, transport.NewCartResponse(h.Store.State()))
}

func (h *CartHTTP) Reset(c echo.Context) error {
	h.Store.Reset()
	logging.FromContext(c.Request().Context()).Info("cart_reset")
	return c.JSON(http.StatusOK, transport.NewCartResponse(h.Store.State()))
}

func (h *CartHTTP) Reload(c echo.Context) error {
	h.Store.Reload()
	return c.JSON(http.StatusOK, transport.NewCartResponse(h.Store.State()))
}

func (h *CartHTTP) Export(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.NewExportResponse(h.Store.Export()))
}

func (h *CartHTTP) GetCustomer(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.CustomerResponse{CustomerID: h.Store.Customer()})
}

func (h *CartHTTP) SetCustomer(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.set_customer")

	var req transport.SetCustomerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_customer_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	id := h.Store.SetCustomer(string(req.CustomerID))
	return c.JSON(http.StatusOK, transport.CustomerResponse{CustomerID: id})
}
