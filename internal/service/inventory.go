package service

import (
	"context"

	"github.com/Skotchmaster/bigbrew_pos/internal/repo"
	"github.com/shopspring/decimal"
)

const lowStockThreshold = 10

const (
	StockOut = "out_of_stock"
	StockLow = "low_stock"
	StockIn  = "in_stock"
)

type StockItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Status    string          `json:"status"`
}

type InventoryService struct {
	Repo *repo.GormRepo
}

func (svc *InventoryService) List(ctx context.Context) ([]StockItem, error) {
	rows, err := svc.Repo.ListInventory(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]StockItem, len(rows))
	for i, r := range rows {
		item := StockItem{
			ProductID: r.ProductID,
			Name:      r.Name,
			Price:     r.Price,
			Stock:     r.Stock,
			Status:    StockStatus(r.Stock),
		}
		if r.Category != nil {
			item.Category = *r.Category
		}
		out[i] = item
	}
	return out, nil
}

func StockStatus(qty int) string {
	switch {
	case qty <= 0:
		return StockOut
	case qty < lowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}
