package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/bigbrew_pos/internal/service"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/labstack/echo/v4"
)

type InventoryHTTP struct {
	Svc *service.InventoryService
}

func (h *InventoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.Svc.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("inventory_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}
