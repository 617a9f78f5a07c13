package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/bigbrew_pos/internal/cart"
	"github.com/Skotchmaster/bigbrew_pos/internal/events"
	"github.com/Skotchmaster/bigbrew_pos/internal/models"
	"github.com/Skotchmaster/bigbrew_pos/internal/repo"
	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/Skotchmaster/bigbrew_pos/internal/search"
	"github.com/Skotchmaster/bigbrew_pos/pkg/db"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var saleTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	DB        *gorm.DB
	Repo      *repo.GormRepo
	Cart      *cart.Store
	Events    *events.Recorder
	Index     *recordingIndex
	Orders    *OrderService
	Sales     *SalesService
	Checkout  *CheckoutService
	Inventory *InventoryService
}

func newFixture(t *testing.T, policy repo.ActorPolicy) *fixture {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	res := schema.NewResolver(schema.GormColumns{DB: gdb}, schema.Overrides{}, logging.Discard())
	caps, err := schema.LoadCapabilities(ctx, res, true)
	require.NoError(t, err)

	rp := repo.New(gdb, caps, policy, logging.Discard())
	rp.Now = func() time.Time { return saleTime }

	f := &fixture{
		DB:     gdb,
		Repo:   rp,
		Cart:   cart.Open(filepath.Join(t.TempDir(), "shared_cart.json"), logging.Discard()),
		Events: &events.Recorder{},
		Index:  &recordingIndex{},
	}
	f.Orders = &OrderService{Repo: rp}
	f.Sales = &SalesService{
		Repo:   rp,
		Events: f.Events,
		Index:  f.Index,
		Now:    func() time.Time { return saleTime },
		Loc:    time.UTC,
	}
	f.Checkout = &CheckoutService{Cart: f.Cart, Orders: f.Orders, Sales: f.Sales, Events: f.Events}
	f.Inventory = &InventoryService{Repo: rp}
	return f
}

func (f *fixture) product(t *testing.T, name, price string) int64 {
	t.Helper()
	p := models.Product{ProductName: name, Price: dec(price), PriceRegular: dec(price)}
	require.NoError(t, f.DB.Create(&p).Error)
	return p.ProductID
}

func (f *fixture) customer(t *testing.T, first, last string) int64 {
	t.Helper()
	c := models.Customer{
		CustomerCode: "C-" + first,
		Username:     first,
		Email:        first + "@customers.test",
		PasswordHash: "x",
		FirstName:    first,
		LastName:     last,
		IsActive:     true,
	}
	require.NoError(t, f.DB.Create(&c).Error)
	return c.CustomerID
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.DB.Table(table).Count(&n).Error)
	return n
}

type recordingIndex struct {
	mu      sync.Mutex
	docs    []search.SaleDoc
	deleted []int64
}

func (r *recordingIndex) IndexSale(_ context.Context, doc search.SaleDoc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	return nil
}

func (r *recordingIndex) DeleteSale(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recordingIndex) snapshot() ([]search.SaleDoc, []int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]search.SaleDoc(nil), r.docs...), append([]int64(nil), r.deleted...)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }
