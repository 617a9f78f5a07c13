package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/bigbrew_pos/internal/cart"
	"github.com/Skotchmaster/bigbrew_pos/internal/repo"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/shopspring/decimal"
)

var PaymentMethods = []string{"cash", "card", "gcash"}

type SaveRequest struct {
	CustomerID    *int64
	Total         decimal.Decimal
	PaymentMethod string
	Items         []cart.Item
	ActorID       *int64
	ProofRef      *string
}

type OrderService struct {
	Repo *repo.GormRepo
}

// Save commits the order as one sale. Unit prices are stored in cents and the
// stated total must equal the sum of the stored lines; nothing reaches the
// database otherwise.
func (svc *OrderService) Save(ctx context.Context, req SaveRequest) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "order.save")

	if len(req.Items) == 0 {
		return 0, fmt.Errorf("%w: items required", ErrValidation)
	}
	method, err := NormalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		return 0, err
	}

	sum := decimal.Zero
	lines := make([]repo.Line, 0, len(req.Items))
	for i, it := range req.Items {
		if it.Qty < 1 {
			return 0, fmt.Errorf("%w: item %d: quantity must be > 0", ErrValidation, i+1)
		}
		if it.Price.IsNegative() {
			return 0, fmt.Errorf("%w: item %d: price must be >= 0", ErrValidation, i+1)
		}
		ln := repo.Line{
			ProductID: it.ProductID,
			Quantity:  it.Qty,
			Price:     it.Price.Round(2),
		}
		sum = sum.Add(ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		lines = append(lines, ln)
	}

	total := req.Total.Round(2)
	if !total.Equal(sum) {
		return 0, fmt.Errorf("%w: total %s, items sum to %s", ErrTotalMismatch, total.StringFixed(2), sum.StringFixed(2))
	}

	var proof *string
	if req.ProofRef != nil && strings.TrimSpace(*req.ProofRef) != "" {
		p := strings.TrimSpace(*req.ProofRef)
		proof = &p
	}

	id, err := svc.Repo.CreateSale(ctx, repo.NewSale{
		CustomerID:    req.CustomerID,
		ActorID:       req.ActorID,
		Total:         total,
		PaymentMethod: method,
		ProofRef:      proof,
		Lines:         lines,
	})
	if err != nil {
		l.Error("save_error", "error", err, "total", total.StringFixed(2), "items", len(lines))
		return 0, err
	}

	l.Info("sale_saved", "sale_id", id, "total", total.StringFixed(2), "items", len(lines))
	return id, nil
}

func NormalizePaymentMethod(raw string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(raw))
	if m == "" {
		return "cash", nil
	}
	for _, ok := range PaymentMethods {
		if m == ok {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown payment method %q", ErrValidation, raw)
}
