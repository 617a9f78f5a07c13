package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeSaleCreated       = "sale_created"
	TypeSaleDeleted       = "sale_deleted"
	TypeSaleStatusChanged = "sale_status_changed"
)

type Item struct {
	ProductID *int64          `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type SaleEvent struct {
	EventID        string           `json:"event_id"`
	Type           string           `json:"type"`
	SaleID         int64            `json:"sale_id"`
	Total          *decimal.Decimal `json:"total,omitempty"`
	PaymentMethod  string           `json:"payment_method,omitempty"`
	CustomerID     *int64           `json:"customer_id,omitempty"`
	ActorID        *int64           `json:"actor_id,omitempty"`
	Status         string           `json:"status,omitempty"`
	PreviousStatus string           `json:"previous_status,omitempty"`
	Items          []Item           `json:"items,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

func NewSaleEvent(typ string, saleID int64) SaleEvent {
	return SaleEvent{
		EventID:    uuid.NewString(),
		Type:       typ,
		SaleID:     saleID,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev SaleEvent) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, SaleEvent) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []SaleEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, ev SaleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []SaleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SaleEvent(nil), r.events...)
}
