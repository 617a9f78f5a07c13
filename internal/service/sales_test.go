package service

import (
	"context"
	"testing"
	"time"

	"github.com/Skotchmaster/bigbrew_pos/internal/events"
	"github.com/Skotchmaster/bigbrew_pos/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodBounds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		period   Period
		from, to time.Time
	}{
		{PeriodAll, time.Time{}, time.Time{}},
		{PeriodToday, d(2026, 3, 14), d(2026, 3, 15)},
		{PeriodLast7Days, now.AddDate(0, 0, -7), time.Time{}},
		{PeriodLast30Days, now.AddDate(0, 0, -30), time.Time{}},
		{PeriodThisMonth, d(2026, 3, 1), d(2026, 4, 1)},
		{PeriodLastMonth, d(2026, 2, 1), d(2026, 3, 1)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.period), func(t *testing.T) {
			t.Parallel()
			from, to, err := PeriodBounds(tt.period, now, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.from.Equal(from), "from %s", from)
			assert.True(t, tt.to.Equal(to), "to %s", to)
		})
	}

	jan := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	from, to, err := PeriodBounds(PeriodLastMonth, jan, time.UTC)
	require.NoError(t, err)
	assert.True(t, d(2025, 12, 1).Equal(from))
	assert.True(t, d(2026, 1, 1).Equal(to))

	_, _, err = PeriodBounds("fortnight", now, time.UTC)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSalesListSummaries(t *testing.T) {
	t.Parallel()

	f := newFixture(t, repo.ActorFabricate)
	ctx := context.Background()
	okinawa := f.product(t, "Okinawa", "29.00")
	matcha := f.product(t, "Matcha", "39.00")
	cid := f.customer(t, "Mika", "Santos")

	f.Repo.Now = func() time.Time { return saleTime.AddDate(0, -2, 0) }
	_, err := f.Repo.CreateSale(ctx, repo.NewSale{
		Total: dec("39"), PaymentMethod: "cash",
		Lines: []repo.Line{{ProductID: &matcha, Quantity: 1, Price: dec("39")}},
	})
	require.NoError(t, err)

	f.Repo.Now = func() time.Time { return saleTime }
	recent, err := f.Repo.CreateSale(ctx, repo.NewSale{
		CustomerID: &cid, Total: dec("97"), PaymentMethod: "gcash",
		Lines: []repo.Line{
			{ProductID: &okinawa, Quantity: 3, Price: dec("29")},
			{Quantity: 1, Price: dec("10")},
		},
	})
	require.NoError(t, err)

	all, err := f.Sales.List(ctx, PeriodAll)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, recent, all[0].ID)
	assert.Equal(t, "Mika Santos", all[0].Customer)
	assert.Equal(t, "3x Okinawa, 1x Add-On", all[0].Items)
	assert.Equal(t, "pending", all[0].Status)
	assert.Equal(t, "Walk-in", all[1].Customer)
	assert.Equal(t, "1x Matcha", all[1].Items)

	today, err := f.Sales.List(ctx, PeriodToday)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, recent, today[0].ID)

	lastMonth, err := f.Sales.List(ctx, PeriodLastMonth)
	require.NoError(t, err)
	assert.Empty(t, lastMonth)
	assert.NotNil(t, lastMonth)

	_, err = f.Sales.List(ctx, "yesterday-ish")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSalesDetails(t *testing.T) {
	t.Parallel()

	f := newFixture(t, repo.ActorFabricate)
	ctx := context.Background()
	okinawa := f.product(t, "Okinawa", "29.00")

	id, err := f.Repo.CreateSale(ctx, repo.NewSale{
		Total: dec("68"), PaymentMethod: "card",
		Lines: []repo.Line{
			{ProductID: &okinawa, Quantity: 2, Price: dec("29")},
			{Quantity: 1, Price: dec("10")},
		},
	})
	require.NoError(t, err)

	d, err := f.Sales.Details(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "card", d.PaymentMethod)
	require.Len(t, d.Lines, 2)
	assert.Equal(t, "Okinawa", d.Lines[0].Name)
	assert.True(t, d.Lines[0].Subtotal.Equal(dec("58")))
	assert.Equal(t, "Add-On", d.Lines[1].Name)

	_, err = f.Sales.Details(ctx, id+10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSalesDeleteNotifies(t *testing.T) {
	t.Parallel()

	f := newFixture(t, repo.ActorFabricate)
	ctx := context.Background()
	okinawa := f.product(t, "Okinawa", "29.00")

	id, err := f.Repo.CreateSale(ctx, repo.NewSale{
		Total: dec("29"), PaymentMethod: "cash",
		Lines: []repo.Line{{ProductID: &okinawa, Quantity: 1, Price: dec("29")}},
	})
	require.NoError(t, err)

	require.NoError(t, f.Sales.Delete(ctx, id))
	assert.Zero(t, f.count(t, "sales"))
	assert.Zero(t, f.count(t, "sale_items"))

	evs := f.Events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeSaleDeleted, evs[0].Type)
	assert.Equal(t, id, evs[0].SaleID)

	_, deleted := f.Index.snapshot()
	assert.Equal(t, []int64{id}, deleted)

	assert.ErrorIs(t, f.Sales.Delete(ctx, id), ErrNotFound)
}

func TestSalesUpdateStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, repo.ActorFabricate)
	ctx := context.Background()
	okinawa := f.product(t, "Okinawa", "29.00")

	id, err := f.Repo.CreateSale(ctx, repo.NewSale{
		Total: dec("29"), PaymentMethod: "cash",
		Lines: []repo.Line{{ProductID: &okinawa, Quantity: 1, Price: dec("29")}},
	})
	require.NoError(t, err)

	_, err = f.Sales.UpdateStatus(ctx, id, "lost")
	assert.ErrorIs(t, err, ErrValidation)

	ch, err := f.Sales.UpdateStatus(ctx, id, " Paid ")
	require.NoError(t, err)
	assert.Equal(t, &StatusChange{SaleID: id, Previous: "pending", Status: "paid"}, ch)

	evs := f.Events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeSaleStatusChanged, evs[0].Type)
	assert.Equal(t, "paid", evs[0].Status)
	assert.Equal(t, "pending", evs[0].PreviousStatus)

	docs, _ := f.Index.snapshot()
	require.Len(t, docs, 1)
	assert.Equal(t, "paid", docs[0].Status)
	assert.Equal(t, "1x Okinawa", docs[0].Items)

	_, err = f.Sales.UpdateStatus(ctx, id+1, "paid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemsSummaryNames(t *testing.T) {
	t.Parallel()

	okinawa := "Okinawa"
	lines := []repo.SaleLine{
		{ProductID: ptr(int64(1)), ProductName: &okinawa, Quantity: 3},
		{ProductID: ptr(int64(2)), Quantity: 1},
		{Quantity: 2},
	}
	assert.Equal(t, "3x Okinawa, 1x Unknown product, 2x Add-On", ItemsSummary(lines))
}

func TestStockStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StockOut, StockStatus(0))
	assert.Equal(t, StockOut, StockStatus(-2))
	assert.Equal(t, StockLow, StockStatus(1))
	assert.Equal(t, StockLow, StockStatus(9))
	assert.Equal(t, StockIn, StockStatus(10))
}

func TestInventoryList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, repo.ActorFabricate)
	f.product(t, "Americano", "49.00")

	items, err := f.Inventory.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Americano", items[0].Name)
	assert.Equal(t, "", items[0].Category)
	assert.Equal(t, StockOut, items[0].Status)
}
