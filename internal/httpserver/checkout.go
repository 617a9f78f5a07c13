package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/bigbrew_pos/internal/service"
	"github.com/Skotchmaster/bigbrew_pos/internal/transport"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	middleware "github.com/Skotchmaster/bigbrew_pos/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

// GetActorID returns the staff id from the access token, or nil for an
// anonymous terminal.
func (h *CheckoutHTTP) GetActorID(c echo.Context) (*int64, error) {
	s, ok := c.Get(middleware.CtxUserID).(string)
	if !ok || s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.New("token subject is not a staff id")
	}
	return &id, nil
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	actorID, err := h.GetActorID(c)
	if err != nil {
		l.Warn("checkout_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rc, err := h.Svc.Checkout(ctx, service.CheckoutRequest{
		PaymentMethod: req.PaymentMethod,
		ProofRef:      req.ProofRef,
		ActorID:       actorID,
	})
	if err != nil {
		code := statusFor(err)
		switch code {
		case http.StatusInternalServerError:
			l.Error("checkout_error", "status", code, "error", err)
			return echo.NewHTTPError(code, msgSaveFailed)
		case http.StatusConflict:
			l.Error("checkout_error", "status", code, "error", err)
			return echo.NewHTTPError(code, msgSaveFailed+": no staff account to attribute the sale to")
		default:
			l.Warn("checkout_error", "status", code, "error", err)
			return echo.NewHTTPError(code, err.Error())
		}
	}

	l.Info("checkout_success", "sale_id", rc.SaleID)
	return c.JSON(http.StatusCreated, rc)
}
