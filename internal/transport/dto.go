package transport

import (
	"github.com/Skotchmaster/bigbrew_pos/internal/cart"
	"github.com/shopspring/decimal"
)

type AddItemRequest = cart.ItemInput

type ChangeQuantityRequest struct {
	Index int `param:"index" json:"index"`
	Delta int `json:"delta"`
}

// SetCustomerRequest accepts the id as a string or a number; anything that is
// not an integer clears the association.
type SetCustomerRequest struct {
	CustomerID cart.Loose `json:"customer_id"`
}

type CustomerResponse struct {
	CustomerID *int64 `json:"customer_id"`
}

type CartResponse struct {
	Items      []cart.Item     `json:"cart_items"`
	AddOnTotal decimal.Decimal `json:"add_on_total_amount"`
	CustomerID *int64          `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
}

func NewCartResponse(st cart.State) CartResponse {
	items := st.Items
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponse{
		Items:      items,
		AddOnTotal: st.AddOnTotal,
		CustomerID: st.CustomerID,
		Total:      st.Total(),
	}
}

// ExportResponse carries nil items when there is nothing to order.
type ExportResponse struct {
	Items      []cart.Item      `json:"items"`
	CustomerID *int64           `json:"customer_id"`
	Total      *decimal.Decimal `json:"total"`
}

func NewExportResponse(exp *cart.Export) ExportResponse {
	if exp == nil {
		return ExportResponse{}
	}
	total := exp.Total()
	return ExportResponse{Items: exp.Items, CustomerID: exp.CustomerID, Total: &total}
}

type CheckoutRequest struct {
	PaymentMethod string  `json:"payment_method"`
	ProofRef      *string `json:"proof_of_payment_path"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type SearchResponse struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Items any   `json:"items"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
