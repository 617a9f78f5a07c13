package service

import (
	"context"
	"sync"

	"github.com/Skotchmaster/bigbrew_pos/internal/cart"
	"github.com/Skotchmaster/bigbrew_pos/internal/events"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	PaymentMethod string
	ProofRef      *string
	ActorID       *int64
}

type Receipt struct {
	SaleID     int64           `json:"sale_id"`
	Total      decimal.Decimal `json:"total"`
	CustomerID *int64          `json:"customer_id,omitempty"`
	Items      []cart.Item     `json:"items"`
}

type OrderSaver interface {
	Save(ctx context.Context, req SaveRequest) (int64, error)
}

// CheckoutService turns the working cart into a sale. Checkouts are serialised
// so one cart is never saved twice; edits made while a sale is being saved are
// kept for the next one.
type CheckoutService struct {
	Cart   *cart.Store
	Orders OrderSaver
	Sales  *SalesService
	Events events.Publisher

	mu sync.Mutex
}

func (svc *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	l := logging.FromContext(ctx).With("svc", "checkout")

	svc.mu.Lock()
	defer svc.mu.Unlock()

	exp := svc.Cart.Export()
	if exp == nil {
		return nil, ErrEmptyCart
	}
	total := exp.Total()

	id, err := svc.Orders.Save(ctx, SaveRequest{
		CustomerID:    exp.CustomerID,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Items:         exp.Items,
		ActorID:       req.ActorID,
		ProofRef:      req.ProofRef,
	})
	if err != nil {
		return nil, err
	}

	svc.Cart.Settle(exp)
	l.Info("checkout_done", "sale_id", id, "total", total.StringFixed(2))

	svc.notify(ctx, id, exp, req)

	return &Receipt{
		SaleID:     id,
		Total:      total,
		CustomerID: exp.CustomerID,
		Items:      exp.Items,
	}, nil
}

func (svc *CheckoutService) notify(ctx context.Context, id int64, exp *cart.Export, req CheckoutRequest) {
	if svc.Events != nil {
		total := exp.Total()
		method, _ := NormalizePaymentMethod(req.PaymentMethod)
		ev := events.NewSaleEvent(events.TypeSaleCreated, id)
		ev.Total = &total
		ev.PaymentMethod = method
		ev.CustomerID = exp.CustomerID
		ev.ActorID = req.ActorID
		ev.Status = "pending"
		for _, it := range exp.Items {
			ev.Items = append(ev.Items, events.Item{
				ProductID: it.ProductID,
				Name:      it.Name,
				Qty:       it.Qty,
				Price:     it.Price,
			})
		}
		if err := svc.Events.Publish(ctx, ev); err != nil {
			logging.FromContext(ctx).Warn("publish_error", "type", ev.Type, "sale_id", id, "error", err)
		}
	}
	if svc.Sales != nil {
		svc.Sales.Reindex(ctx, id)
	}
}
