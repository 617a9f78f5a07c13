package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const StatusPaid = "paid"

var ErrNoStatusColumn = errors.New("sales table has no status column")

type SaleRecord struct {
	ID            int64           `gorm:"column:id"`
	Date          time.Time       `gorm:"column:sale_date"`
	Total         decimal.Decimal `gorm:"column:total"`
	PaymentMethod string          `gorm:"column:payment_method"`
	Status        *string         `gorm:"column:status"`
	ProofPath     *string         `gorm:"column:proof_path"`
	CustomerID    *int64          `gorm:"column:customer_id"`
	CustomerFirst *string         `gorm:"column:customer_first"`
	CustomerLast  *string         `gorm:"column:customer_last"`
}

type SaleLine struct {
	SaleID      int64           `gorm:"column:sale_id"`
	ProductID   *int64          `gorm:"column:product_id"`
	ProductName *string         `gorm:"column:product_name"`
	Quantity    int             `gorm:"column:quantity"`
	Price       decimal.Decimal `gorm:"column:price"`
}

func (r *GormRepo) saleSelect(db *gorm.DB) string {
	m := r.sales()
	c := func(role schema.Role) string { return col(db, "s", m.Get(role)) }

	status := "NULL"
	if m.Has(schema.SaleStatus) {
		status = c(schema.SaleStatus)
	}
	proof := "NULL"
	if m.Has(schema.SaleProofPath) {
		proof = c(schema.SaleProofPath)
	}

	first, last, join := "NULL", "NULL", ""
	if m.Has(schema.CustomerPK) {
		first = col(db, "cu", m.Get(schema.CustomerFirst))
		last = col(db, "cu", m.Get(schema.CustomerLast))
		join = fmt.Sprintf(" LEFT JOIN %s cu ON %s = %s",
			quote(db, schema.TableCustomers), col(db, "cu", m.Get(schema.CustomerPK)), c(schema.CustomerFK))
	}

	return fmt.Sprintf(
		"SELECT %s AS id, %s AS sale_date, %s AS total, %s AS payment_method, %s AS status, "+
			"%s AS proof_path, %s AS customer_id, %s AS customer_first, %s AS customer_last FROM %s s%s",
		c(schema.SaleID), c(schema.SaleDate), c(schema.TotalAmount), c(schema.PaymentMethod), status,
		proof, c(schema.CustomerFK), first, last, quote(db, schema.TableSales), join,
	)
}

// ListSales returns sales with from <= date < to, newest first. Zero bounds are open.
func (r *GormRepo) ListSales(ctx context.Context, from, to time.Time) ([]SaleRecord, error) {
	db := r.DB.WithContext(ctx)
	m := r.sales()
	date := col(db, "s", m.Get(schema.SaleDate))

	var where []string
	var args []any
	if !from.IsZero() {
		where = append(where, date+" >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		where = append(where, date+" < ?")
		args = append(args, to.UTC())
	}

	q := r.saleSelect(db)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += fmt.Sprintf(" ORDER BY %s DESC, %s DESC", date, col(db, "s", m.Get(schema.SaleID)))

	var out []SaleRecord
	if err := db.Raw(q, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) GetSale(ctx context.Context, id int64) (*SaleRecord, error) {
	db := r.DB.WithContext(ctx)
	q := r.saleSelect(db) + fmt.Sprintf(" WHERE %s = ?", col(db, "s", r.sales().Get(schema.SaleID)))

	var out []SaleRecord
	if err := db.Raw(q, id).Scan(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &out[0], nil
}

// SaleLines returns the line items of the given sales, grouped by sale in
// insertion order.
func (r *GormRepo) SaleLines(ctx context.Context, saleIDs ...int64) ([]SaleLine, error) {
	if len(saleIDs) == 0 {
		return nil, nil
	}
	db := r.DB.WithContext(ctx)
	m := r.sales()
	si := func(role schema.Role) string { return col(db, "si", m.Get(role)) }

	q := fmt.Sprintf(
		"SELECT %s AS sale_id, %s AS product_id, %s AS product_name, %s AS quantity, %s AS price "+
			"FROM %s si LEFT JOIN %s p ON %s = %s WHERE %s IN ? ORDER BY %s",
		si(schema.SaleItemSaleFK), si(schema.SaleItemProductFK), col(db, "p", m.Get(schema.SalesProductName)),
		si(schema.SaleItemQty), si(schema.SaleItemPrice),
		quote(db, schema.TableSaleItems), quote(db, schema.TableProducts),
		col(db, "p", m.Get(schema.SalesProductID)), si(schema.SaleItemProductFK),
		si(schema.SaleItemSaleFK), si(schema.SaleItemSaleFK),
	)

	var out []SaleLine
	if err := db.Raw(q, saleIDs).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSale removes the lines before the header so it does not depend on an
// ON DELETE CASCADE being declared.
func (r *GormRepo) DeleteSale(ctx context.Context, id int64) error {
	m := r.sales()
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delItems := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
			quote(tx, schema.TableSaleItems), quote(tx, m.Get(schema.SaleItemSaleFK)))
		if err := tx.Exec(delItems, id).Error; err != nil {
			return err
		}

		delSale := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
			quote(tx, schema.TableSales), quote(tx, m.Get(schema.SaleID)))
		res := tx.Exec(delSale, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// UpdateSaleStatus sets the status and returns the previous one. Moving into
// paid credits the customer and takes the sold quantities out of stock in the
// same transaction.
func (r *GormRepo) UpdateSaleStatus(ctx context.Context, id int64, status string) (string, error) {
	if !r.sales().Has(schema.SaleStatus) {
		return "", ErrNoStatusColumn
	}
	var prev string

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := r.lockSale(tx, id)
		if err != nil {
			return err
		}
		prev = "pending"
		if cur.Status != nil && *cur.Status != "" {
			prev = strings.ToLower(*cur.Status)
		}

		m := r.sales()
		upd := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
			quote(tx, schema.TableSales), quote(tx, m.Get(schema.SaleStatus)), quote(tx, m.Get(schema.SaleID)))
		if err := tx.Exec(upd, status, id).Error; err != nil {
			return err
		}

		if status == StatusPaid && prev != StatusPaid {
			if err := r.creditCustomer(ctx, tx, cur); err != nil {
				return fmt.Errorf("credit customer: %w", err)
			}
			if err := r.deductStock(ctx, tx, id); err != nil {
				return fmt.Errorf("deduct stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return prev, nil
}

func (r *GormRepo) lockSale(tx *gorm.DB, id int64) (*SaleRecord, error) {
	m := r.sales()
	status := "NULL"
	if m.Has(schema.SaleStatus) {
		status = quote(tx, m.Get(schema.SaleStatus))
	}
	q := fmt.Sprintf("SELECT %s AS id, %s AS total, %s AS status, %s AS customer_id FROM %s WHERE %s = ?",
		quote(tx, m.Get(schema.SaleID)), quote(tx, m.Get(schema.TotalAmount)), status,
		quote(tx, m.Get(schema.CustomerFK)), quote(tx, schema.TableSales), quote(tx, m.Get(schema.SaleID)))

	var rows []SaleRecord
	if err := tx.Raw(q, id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *GormRepo) creditCustomer(ctx context.Context, tx *gorm.DB, s *SaleRecord) error {
	if s.CustomerID == nil {
		return nil
	}
	cols, err := schema.GormColumns{DB: tx}.Columns(ctx, schema.TableCustomers)
	if err != nil {
		r.Log.Warn("customer_credit_skipped", "error", err)
		return nil
	}
	has := columnSet(cols)

	var set []string
	var args []any
	if has["total_spent"] {
		set = append(set, fmt.Sprintf("%[1]s = COALESCE(%[1]s, 0) + ?", quote(tx, "total_spent")))
		args = append(args, s.Total)
	}
	if has["loyalty_points"] {
		set = append(set, fmt.Sprintf("%[1]s = COALESCE(%[1]s, 0) + ?", quote(tx, "loyalty_points")))
		args = append(args, LoyaltyPoints(s.Total))
	}
	if len(set) == 0 {
		return nil
	}

	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quote(tx, schema.TableCustomers), strings.Join(set, ", "), quote(tx, r.sales().Get(schema.CustomerPK)))
	return tx.Exec(q, append(args, *s.CustomerID)...).Error
}

// LoyaltyPoints is one point per started ten units of currency.
func LoyaltyPoints(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Div(decimal.NewFromInt(10)).Ceil().IntPart()
}

func (r *GormRepo) deductStock(ctx context.Context, tx *gorm.DB, saleID int64) error {
	cols, err := schema.GormColumns{DB: tx}.Columns(ctx, schema.TableInventory)
	if err != nil {
		r.Log.Warn("stock_deduction_skipped", "error", err)
		return nil
	}
	has := columnSet(cols)

	cat := r.catalog()
	qty := cat.Get(schema.InventoryQty)
	targets := []string{qty}
	if qty != "current_stock" && has["current_stock"] {
		targets = append(targets, "current_stock")
	}

	m := r.sales()
	var lines []SaleLine
	sel := fmt.Sprintf("SELECT %s AS product_id, %s AS quantity FROM %s WHERE %s = ?",
		quote(tx, m.Get(schema.SaleItemProductFK)), quote(tx, m.Get(schema.SaleItemQty)),
		quote(tx, schema.TableSaleItems), quote(tx, m.Get(schema.SaleItemSaleFK)))
	if err := tx.Raw(sel, saleID).Scan(&lines).Error; err != nil {
		return err
	}

	for _, ln := range lines {
		if ln.ProductID == nil || ln.Quantity <= 0 {
			continue
		}
		var set []string
		var args []any
		for _, t := range targets {
			qt := quote(tx, t)
			set = append(set, fmt.Sprintf("%[1]s = CASE WHEN %[1]s > ? THEN %[1]s - ? ELSE 0 END", qt))
			args = append(args, ln.Quantity, ln.Quantity)
		}
		upd := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			quote(tx, schema.TableInventory), strings.Join(set, ", "), quote(tx, cat.Get(schema.InventoryProductFK)))
		if err := tx.Exec(upd, append(args, *ln.ProductID)...).Error; err != nil {
			return err
		}
	}
	return nil
}
