package repo

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/shopspring/decimal"
)

type StockRow struct {
	ProductID int64           `gorm:"column:product_id"`
	Name      string          `gorm:"column:name"`
	Category  *string         `gorm:"column:category"`
	Price     decimal.Decimal `gorm:"column:price"`
	Stock     int             `gorm:"column:stock"`
}

// ListInventory joins products with their category and stock level using the
// catalog column map. Products without an inventory row report zero stock.
func (r *GormRepo) ListInventory(ctx context.Context) ([]StockRow, error) {
	db := r.DB.WithContext(ctx)
	m := r.catalog()
	p := func(role schema.Role) string { return col(db, "p", m.Get(role)) }

	category, catJoin := "NULL", ""
	if m.Has(schema.CategoryID) {
		category = col(db, "c", m.Get(schema.CategoryName))
		catJoin = fmt.Sprintf(" LEFT JOIN %s c ON %s = %s",
			quote(db, schema.TableCategories), col(db, "c", m.Get(schema.CategoryID)), p(schema.ProductCategoryFK))
	}
	stock, invJoin := "0", ""
	if m.Has(schema.InventoryQty) {
		stock = fmt.Sprintf("COALESCE(%s, 0)", col(db, "i", m.Get(schema.InventoryQty)))
		invJoin = fmt.Sprintf(" LEFT JOIN %s i ON %s = %s",
			quote(db, schema.TableInventory), col(db, "i", m.Get(schema.InventoryProductFK)), p(schema.ProductID))
	}

	q := fmt.Sprintf("SELECT %s AS product_id, %s AS name, %s AS category, %s AS price, %s AS stock FROM %s p%s%s ORDER BY %s, %s",
		p(schema.ProductID), p(schema.ProductName), category, p(schema.ProductPrice), stock,
		quote(db, schema.TableProducts), catJoin, invJoin, p(schema.ProductName), p(schema.ProductID))

	var out []StockRow
	if err := db.Raw(q).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
