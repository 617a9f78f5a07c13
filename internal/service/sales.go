package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/bigbrew_pos/internal/cart"
	"github.com/Skotchmaster/bigbrew_pos/internal/events"
	"github.com/Skotchmaster/bigbrew_pos/internal/repo"
	"github.com/Skotchmaster/bigbrew_pos/internal/search"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Period string

const (
	PeriodAll        Period = "all"
	PeriodToday      Period = "today"
	PeriodLast7Days  Period = "last_7_days"
	PeriodLast30Days Period = "last_30_days"
	PeriodThisMonth  Period = "this_month"
	PeriodLastMonth  Period = "last_month"
)

var Statuses = []string{"pending", repo.StatusPaid, "cancelled", "refunded"}

const (
	walkIn         = "Walk-in"
	unknownProduct = "Unknown product"
)

// PeriodBounds returns [from, to) for a listing filter in loc. Zero times are
// open bounds.
func PeriodBounds(p Period, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	switch p {
	case PeriodAll, "":
		return time.Time{}, time.Time{}, nil
	case PeriodToday:
		return midnight, midnight.AddDate(0, 0, 1), nil
	case PeriodLast7Days:
		return now.AddDate(0, 0, -7), time.Time{}, nil
	case PeriodLast30Days:
		return now.AddDate(0, 0, -30), time.Time{}, nil
	case PeriodThisMonth:
		return monthStart, monthStart.AddDate(0, 1, 0), nil
	case PeriodLastMonth:
		return monthStart.AddDate(0, -1, 0), monthStart, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown period %q", ErrValidation, p)
	}
}

type SaleSummary struct {
	ID            int64           `json:"sale_id"`
	Date          time.Time       `json:"sale_date"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	Customer      string          `json:"customer"`
	CustomerID    *int64          `json:"customer_id,omitempty"`
	Items         string          `json:"items"`
	ProofPath     *string         `json:"proof_of_payment_path,omitempty"`
}

type LineDetail struct {
	ProductID *int64          `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleDetail struct {
	SaleSummary
	Lines []LineDetail `json:"lines"`
}

type StatusChange struct {
	SaleID   int64  `json:"sale_id"`
	Previous string `json:"previous_status"`
	Status   string `json:"status"`
}

type SalesService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  search.Indexer
	Now    func() time.Time
	Loc    *time.Location
}

func (svc *SalesService) now() time.Time {
	if svc.Now == nil {
		return time.Now()
	}
	return svc.Now()
}

func (svc *SalesService) List(ctx context.Context, p Period) ([]SaleSummary, error) {
	from, to, err := PeriodBounds(p, svc.now(), svc.Loc)
	if err != nil {
		return nil, err
	}

	recs, err := svc.Repo.ListSales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return []SaleSummary{}, nil
	}

	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	lines, err := svc.Repo.SaleLines(ctx, ids...)
	if err != nil {
		return nil, err
	}
	bySale := map[int64][]repo.SaleLine{}
	for _, ln := range lines {
		bySale[ln.SaleID] = append(bySale[ln.SaleID], ln)
	}

	out := make([]SaleSummary, len(recs))
	for i, r := range recs {
		out[i] = summarize(r, bySale[r.ID])
	}
	return out, nil
}

func (svc *SalesService) Details(ctx context.Context, id int64) (*SaleDetail, error) {
	rec, err := svc.Repo.GetSale(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	lines, err := svc.Repo.SaleLines(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &SaleDetail{SaleSummary: summarize(*rec, lines), Lines: make([]LineDetail, len(lines))}
	for i, ln := range lines {
		d.Lines[i] = LineDetail{
			ProductID: ln.ProductID,
			Name:      lineName(ln),
			Qty:       ln.Quantity,
			Price:     ln.Price,
			Subtotal:  ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))),
		}
	}
	return d, nil
}

func (svc *SalesService) Delete(ctx context.Context, id int64) error {
	l := logging.FromContext(ctx).With("svc", "sales.delete")

	if err := svc.Repo.DeleteSale(ctx, id); err != nil {
		return notFound(err, id)
	}
	l.Info("sale_deleted", "sale_id", id)

	svc.publish(ctx, events.NewSaleEvent(events.TypeSaleDeleted, id))
	if svc.Index != nil {
		if err := svc.Index.DeleteSale(ctx, id); err != nil {
			l.Warn("index_delete_error", "sale_id", id, "error", err)
		}
	}
	return nil
}

func (svc *SalesService) UpdateStatus(ctx context.Context, id int64, status string) (*StatusChange, error) {
	l := logging.FromContext(ctx).With("svc", "sales.status")

	status = strings.ToLower(strings.TrimSpace(status))
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	prev, err := svc.Repo.UpdateSaleStatus(ctx, id, status)
	if errors.Is(err, repo.ErrNoStatusColumn) {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err != nil {
		return nil, notFound(err, id)
	}
	l.Info("sale_status_changed", "sale_id", id, "from", prev, "to", status)

	ev := events.NewSaleEvent(events.TypeSaleStatusChanged, id)
	ev.Status = status
	ev.PreviousStatus = prev
	svc.publish(ctx, ev)
	svc.Reindex(ctx, id)

	return &StatusChange{SaleID: id, Previous: prev, Status: status}, nil
}

// Reindex pushes the current state of a sale to the search index. Failures are
// logged only; the database stays the source of truth.
func (svc *SalesService) Reindex(ctx context.Context, id int64) {
	if svc.Index == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "sales.reindex")

	d, err := svc.Details(ctx, id)
	if err != nil {
		l.Warn("index_load_error", "sale_id", id, "error", err)
		return
	}
	doc := search.SaleDoc{
		SaleID:        d.ID,
		Date:          d.Date,
		Total:         d.Total,
		PaymentMethod: d.PaymentMethod,
		Status:        d.Status,
		Customer:      d.Customer,
		Items:         d.Items,
	}
	if err := svc.Index.IndexSale(ctx, doc); err != nil {
		l.Warn("index_error", "sale_id", id, "error", err)
	}
}

func (svc *SalesService) publish(ctx context.Context, ev events.SaleEvent) {
	if svc.Events == nil {
		return
	}
	if err := svc.Events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "type", ev.Type, "sale_id", ev.SaleID, "error", err)
	}
}

func summarize(r repo.SaleRecord, lines []repo.SaleLine) SaleSummary {
	s := SaleSummary{
		ID:            r.ID,
		Date:          r.Date,
		Total:         r.Total,
		PaymentMethod: r.PaymentMethod,
		Status:        "pending",
		Customer:      customerName(r.CustomerFirst, r.CustomerLast),
		CustomerID:    r.CustomerID,
		ProofPath:     r.ProofPath,
	}
	if r.Status != nil && *r.Status != "" {
		s.Status = strings.ToLower(*r.Status)
	}
	s.Items = ItemsSummary(lines)
	return s
}

// ItemsSummary renders lines as "3x Okinawa, 1x Add-On".
func ItemsSummary(lines []repo.SaleLine) string {
	parts := make([]string, len(lines))
	for i, ln := range lines {
		parts[i] = fmt.Sprintf("%dx %s", ln.Quantity, lineName(ln))
	}
	return strings.Join(parts, ", ")
}

func lineName(ln repo.SaleLine) string {
	if ln.ProductName != nil && *ln.ProductName != "" {
		return *ln.ProductName
	}
	if ln.ProductID != nil {
		return unknownProduct
	}
	return cart.AddOnName
}

func customerName(first, last *string) string {
	var parts []string
	for _, p := range []*string{first, last} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	if len(parts) == 0 {
		return walkIn
	}
	return strings.Join(parts, " ")
}

func validStatus(s string) bool {
	for _, ok := range Statuses {
		if s == ok {
			return true
		}
	}
	return false
}

func notFound(err error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: sale %d", ErrNotFound, id)
	}
	return err
}
