package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/bigbrew_pos/internal/search"
	"github.com/Skotchmaster/bigbrew_pos/internal/service"
	"github.com/Skotchmaster/bigbrew_pos/internal/transport"
	"github.com/Skotchmaster/bigbrew_pos/internal/util"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/labstack/echo/v4"
)

type SaleSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []search.SaleDoc, error)
}

type SalesHTTP struct {
	Svc    *service.SalesService
	Search SaleSearcher
}

func saleID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *SalesHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sales.list")

	period := service.Period(c.QueryParam("period"))
	sales, err := h.Svc.List(ctx, period)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			l.Error("list_sales_error", "status", code, "error", err)
			return echo.NewHTTPError(code, "internal error")
		}
		l.Warn("list_sales_error", "status", code, "error", err)
		return echo.NewHTTPError(code, err.Error())
	}
	return c.JSON(http.StatusOK, sales)
}

func (h *SalesHTTP) Details(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sales.details")

	id, err := saleID(c)
	if err != nil {
		l.Warn("sale_details_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sale id")
	}

	d, err := h.Svc.Details(ctx, id)
	if err != nil {
		code := statusFor(err)
		l.Warn("sale_details_error", "status", code, "sale_id", id, "error", err)
		if code == http.StatusInternalServerError {
			return echo.NewHTTPError(code, "internal error")
		}
		return echo.NewHTTPError(code, "sale not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *SalesHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sales.delete")

	id, err := saleID(c)
	if err != nil {
		l.Warn("delete_sale_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sale id")
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		code := statusFor(err)
		l.Warn("delete_sale_error", "status", code, "sale_id", id, "error", err)
		if code == http.StatusInternalServerError {
			return echo.NewHTTPError(code, "internal error")
		}
		return echo.NewHTTPError(code, "sale not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SalesHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sales.update_status")

	id, err := saleID(c)
	if err != nil {
		l.Warn("update_status_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sale id")
	}

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ch, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		code := statusFor(err)
		l.Warn("update_status_error", "status", code, "sale_id", id, "error", err)
		if code == http.StatusInternalServerError {
			return echo.NewHTTPError(code, "internal error")
		}
		return echo.NewHTTPError(code, err.Error())
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *SalesHTTP) SearchSales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sales.search")

	if h.Search == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	from, size := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	total, docs, err := h.Search.Search(ctx, c.QueryParam("q"), from, size)
	if err != nil {
		l.Error("search_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search failed")
	}
	if docs == nil {
		docs = []search.SaleDoc{}
	}

	return c.JSON(http.StatusOK, transport.SearchResponse{
		Total: total,
		Page:  max(page, 1),
		Size:  size,
		Items: docs,
	})
}
