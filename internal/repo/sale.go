package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Line is one sale_items row; a nil ProductID is stored as NULL.
type Line struct {
	ProductID *int64
	Quantity  int
	Price     decimal.Decimal
}

type NewSale struct {
	CustomerID    *int64
	ActorID       *int64
	Total         decimal.Decimal
	PaymentMethod string
	ProofRef      *string
	Lines         []Line
}

// CreateSale writes the header and every line in one transaction. Either the
// whole sale is visible afterwards or nothing is.
func (r *GormRepo) CreateSale(ctx context.Context, s NewSale) (int64, error) {
	var saleID int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		live, err := schema.GormColumns{DB: tx}.Columns(ctx, schema.TableSales)
		if err != nil {
			return err
		}
		has := columnSet(live)

		var actor *int64
		if has[ActorColumn] {
			actor, err = r.resolveActor(ctx, tx, s.ActorID)
			if err != nil {
				return err
			}
		}

		saleID, err = r.insertSale(tx, s, actor, has)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		for i, ln := range s.Lines {
			if err := r.insertLine(tx, saleID, ln); err != nil {
				return fmt.Errorf("insert sale item %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saleID, nil
}

func (r *GormRepo) insertSale(tx *gorm.DB, s NewSale, actor *int64, has map[string]bool) (int64, error) {
	m := r.sales()

	cols := []string{m.Get(schema.TotalAmount), m.Get(schema.PaymentMethod)}
	args := []any{s.Total, s.PaymentMethod}

	if c := m.Get(schema.CustomerFK); has[c] {
		cols = append(cols, c)
		args = append(args, s.CustomerID)
	} else if s.CustomerID != nil {
		r.Log.Warn("sale_customer_dropped", "customer_id", *s.CustomerID, "column", c)
	}
	if has[ActorColumn] {
		cols = append(cols, ActorColumn)
		args = append(args, actor)
	}
	if c := m.Get(schema.SaleDate); has[c] {
		cols = append(cols, c)
		args = append(args, r.now())
	}
	if s.ProofRef != nil {
		if c := m.Get(schema.SaleProofPath); has[c] {
			cols = append(cols, c)
			args = append(args, *s.ProofRef)
		} else {
			r.Log.Warn("sale_proof_dropped", "column", c)
		}
	}

	var id int64
	if err := tx.Raw(insertReturning(tx, schema.TableSales, cols, m.Get(schema.SaleID)), args...).Scan(&id).Error; err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("insert returned no id")
	}
	return id, nil
}

func (r *GormRepo) insertLine(tx *gorm.DB, saleID int64, ln Line) error {
	m := r.sales()
	q := fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, ?, ?, ?)",
		quote(tx, schema.TableSaleItems),
		quote(tx, m.Get(schema.SaleItemSaleFK)),
		quote(tx, m.Get(schema.SaleItemProductFK)),
		quote(tx, m.Get(schema.SaleItemQty)),
		quote(tx, m.Get(schema.SaleItemPrice)),
	)
	return tx.Exec(q, saleID, ln.ProductID, ln.Quantity, ln.Price).Error
}
