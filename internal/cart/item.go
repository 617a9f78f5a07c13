package cart

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultSize = "Regular"
	AddOnName   = "Add-On"
)

// Item is one line of the working order. Qty is always >= 1 while the item is in the cart.
type Item struct {
	ProductID   *int64          `json:"product_id"`
	Name        string          `json:"name"`
	Size        string          `json:"size"`
	Price       decimal.Decimal `json:"price"`
	Qty         int             `json:"qty"`
	IsAddOn     bool            `json:"is_add_on"`
	ProductCode *string         `json:"product_code,omitempty"`
	ImagePath   *string         `json:"image_path,omitempty"`
}

func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
}

func (it Item) clone() Item {
	out := it
	out.ProductID = cloneInt(it.ProductID)
	out.ProductCode = cloneString(it.ProductCode)
	out.ImagePath = cloneString(it.ImagePath)
	return out
}

func (it Item) equal(o Item) bool {
	return it.Name == o.Name &&
		it.Size == o.Size &&
		it.Price.Equal(o.Price) &&
		it.Qty == o.Qty &&
		it.IsAddOn == o.IsAddOn &&
		eqPtr(it.ProductID, o.ProductID) &&
		eqPtr(it.ProductCode, o.ProductCode) &&
		eqPtr(it.ImagePath, o.ImagePath)
}

// Loose holds a scalar that UI processes send either as a JSON string or a JSON number.
type Loose string

func (l *Loose) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Loose(s)
		return nil
	}
	*l = Loose(data)
	return nil
}

// ItemInput is an unvalidated "add item" request.
type ItemInput struct {
	ProductID   *int64  `json:"product_id"`
	Name        string  `json:"name"`
	Size        string  `json:"size"`
	Price       Loose   `json:"price"`
	Qty         Loose   `json:"qty"`
	IsAddOn     bool    `json:"is_add_on"`
	ProductCode *string `json:"product_code"`
	ImagePath   *string `json:"image_path"`
}

func normalize(in ItemInput) Item {
	size := strings.TrimSpace(in.Size)
	if size == "" {
		size = DefaultSize
	}
	return Item{
		ProductID:   cloneInt(in.ProductID),
		Name:        in.Name,
		Size:        size,
		Price:       parsePrice(string(in.Price)),
		Qty:         parseQty(string(in.Qty)),
		IsAddOn:     in.IsAddOn,
		ProductCode: cloneString(in.ProductCode),
		ImagePath:   cloneString(in.ImagePath),
	}
}

func parseQty(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		d, derr := decimal.NewFromString(raw)
		if derr != nil {
			return 1
		}
		n = int(d.IntPart())
	}
	if n < 1 {
		return 1
	}
	return n
}

// parsePrice rounds to whole cents, the precision sale lines are stored at.
func parsePrice(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

// ParseCustomerID returns nil for anything that is not an integer.
func ParseCustomerID(raw string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
