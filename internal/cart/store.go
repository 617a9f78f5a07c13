package cart

import (
	"errors"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// State is the aggregate working order as it is mirrored to the snapshot file.
type State struct {
	Items      []Item          `json:"cart_items"`
	AddOnTotal decimal.Decimal `json:"add_on_total_amount"`
	CustomerID *int64          `json:"customer_id"`
}

func (st State) clone() State {
	out := State{
		Items:      make([]Item, len(st.Items)),
		AddOnTotal: st.AddOnTotal,
		CustomerID: cloneInt(st.CustomerID),
	}
	for i, it := range st.Items {
		out.Items[i] = it.clone()
	}
	return out
}

// Equal compares by value; decimals with different exponents but the same value are equal.
func (st State) Equal(o State) bool {
	if len(st.Items) != len(o.Items) || !st.AddOnTotal.Equal(o.AddOnTotal) || !eqPtr(st.CustomerID, o.CustomerID) {
		return false
	}
	for i := range st.Items {
		if !st.Items[i].equal(o.Items[i]) {
			return false
		}
	}
	return true
}

// Total is the sum of price x qty over the lines plus the add-on total.
func (st State) Total() decimal.Decimal {
	total := st.AddOnTotal
	for _, it := range st.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Export is an immutable copy of the cart handed to checkout.
type Export struct {
	Items      []Item
	AddOnTotal decimal.Decimal
	CustomerID *int64
}

func (e *Export) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range e.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Store holds the order being built and mirrors every mutation to a snapshot
// file so independently started processes see the same cart. Across processes
// the last completed rename wins.
type Store struct {
	mu    sync.Mutex
	path  string
	state State
	log   *slog.Logger
}

// Open loads the snapshot at path. A missing or corrupt file yields an empty cart.
func Open(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{path: path, log: log.With("component", "cart")}
	s.state = s.load()
	return s
}

func (s *Store) load() State {
	if s.path == "" {
		return State{}
	}
	st, err := readSnapshot(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("cart_snapshot_ignored", "path", s.path, "error", err)
		}
		return State{}
	}
	return st
}

// Reload replaces the in-memory cart with the snapshot on disk, with the same
// fallback rules as Open.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.load()
}

func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}
	if err := writeSnapshot(s.path, s.state); err != nil {
		s.log.Warn("cart_snapshot_write_failed", "path", s.path, "error", err)
	}
}

// Add normalises in and either accumulates it into the add-on total or merges it
// into a line with the same name, size and price.
func (s *Store) Add(in ItemInput) {
	item := normalize(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.IsAddOn {
		s.state.AddOnTotal = s.state.AddOnTotal.Add(item.LineTotal())
		s.persistLocked()
		return
	}

	for i := range s.state.Items {
		cur := &s.state.Items[i]
		if cur.Name == item.Name && cur.Size == item.Size && cur.Price.Equal(item.Price) {
			cur.Qty += item.Qty
			s.persistLocked()
			return
		}
	}
	s.state.Items = append(s.state.Items, item)
	s.persistLocked()
}

// ChangeQuantity adds delta to the quantity of the line at index. A line that
// reaches zero is removed. An out of range index is ignored.
func (s *Store) ChangeQuantity(index, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.state.Items) {
		return
	}

	qty := s.state.Items[index].Qty + delta
	if qty <= 0 {
		s.state.Items = append(s.state.Items[:index], s.state.Items[index+1:]...)
	} else {
		s.state.Items[index].Qty = qty
	}
	s.persistLocked()
}

// Clear drops every line and the add-on total. The customer stays associated.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = nil
	s.state.AddOnTotal = decimal.Zero
	s.persistLocked()
}

// Reset clears the cart and the customer association.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	s.persistLocked()
}

// Export returns a deep copy of the lines plus a synthetic add-on line when the
// add-on total is positive. Prices are rounded to cents. It returns nil when
// there is nothing to order.
func (s *Store) Export() *Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	addOn := s.state.AddOnTotal
	hasAddOn := addOn.Round(2).IsPositive()
	if len(s.state.Items) == 0 && !hasAddOn {
		return nil
	}

	items := make([]Item, 0, len(s.state.Items)+1)
	for _, it := range s.state.Items {
		c := it.clone()
		c.Price = c.Price.Round(2)
		items = append(items, c)
	}
	if hasAddOn {
		items = append(items, Item{
			Name:    AddOnName,
			Size:    DefaultSize,
			Price:   addOn.Round(2),
			Qty:     1,
			IsAddOn: true,
		})
	}

	return &Export{
		Items:      items,
		AddOnTotal: addOn,
		CustomerID: cloneInt(s.state.CustomerID),
	}
}

// Settle takes what exp captured out of the cart once it has been sold. Lines
// and add-ons added after the export stay, and the customer is cleared only if
// it is still the exported one. With no edits in between this equals Reset.
func (s *Store) Settle(exp *Export) {
	if exp == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sold := range exp.Items {
		if sold.IsAddOn {
			continue
		}
		for i := range s.state.Items {
			cur := &s.state.Items[i]
			if cur.Name != sold.Name || cur.Size != sold.Size || !cur.Price.Round(2).Equal(sold.Price) || !eqPtr(cur.ProductID, sold.ProductID) {
				continue
			}
			cur.Qty -= sold.Qty
			if cur.Qty <= 0 {
				s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
			}
			break
		}
	}
	if len(s.state.Items) == 0 {
		s.state.Items = nil
	}

	s.state.AddOnTotal = s.state.AddOnTotal.Sub(exp.AddOnTotal)
	if !s.state.AddOnTotal.IsPositive() {
		s.state.AddOnTotal = decimal.Zero
	}
	if eqPtr(s.state.CustomerID, exp.CustomerID) {
		s.state.CustomerID = nil
	}
	s.persistLocked()
}

// SetCustomer associates the cart with the customer id in raw. Anything that is
// not an integer clears the association.
func (s *Store) SetCustomer(raw string) *int64 {
	id := ParseCustomerID(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CustomerID = id
	s.persistLocked()
	return cloneInt(id)
}

func (s *Store) Customer() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneInt(s.state.CustomerID)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Items)
}
