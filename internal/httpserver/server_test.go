package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/Skotchmaster/bigbrew_pos/internal/cart"
	"github.com/Skotchmaster/bigbrew_pos/internal/events"
	"github.com/Skotchmaster/bigbrew_pos/internal/models"
	"github.com/Skotchmaster/bigbrew_pos/internal/repo"
	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/Skotchmaster/bigbrew_pos/internal/search"
	"github.com/Skotchmaster/bigbrew_pos/internal/service"
	"github.com/Skotchmaster/bigbrew_pos/pkg/db"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	loggingmw "github.com/Skotchmaster/bigbrew_pos/pkg/middleware/logging"
	"github.com/Skotchmaster/bigbrew_pos/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	testSecret = []byte("pos-test-secret")
	saleTime   = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
)

type testEnv struct {
	E      *echo.Echo
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Cart   *cart.Store
	Events *events.Recorder
	Search *fakeSearch
}

type fakeSearch struct {
	query      string
	from, size int
	docs       []search.SaleDoc
	err        error
}

func (f *fakeSearch) Search(_ context.Context, query string, from, size int) (int64, []search.SaleDoc, error) {
	f.query, f.from, f.size = query, from, size
	return int64(len(f.docs)), f.docs, f.err
}

func newTestEnv(t *testing.T, policy repo.ActorPolicy, secret []byte) *testEnv {
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

	env := &testEnv{
		DB:     gdb,
		Repo:   rp,
		Cart:   cart.Open(filepath.Join(t.TempDir(), "shared_cart.json"), logging.Discard()),
		Events: &events.Recorder{},
		Search: &fakeSearch{},
	}

	orders := &service.OrderService{Repo: rp}
	sales := &service.SalesService{
		Repo:   rp,
		Events: env.Events,
		Index:  search.Nop{},
		Now:    func() time.Time { return saleTime },
		Loc:    time.UTC,
	}

	env.E = echo.New()
	env.E.Use(loggingmw.RequestLogger(logging.Discard()))
	Register(env.E, &Deps{
		DB:               gdb,
		CartHandler:      &CartHTTP{Store: env.Cart},
		CheckoutHandler:  &CheckoutHTTP{Svc: &service.CheckoutService{Cart: env.Cart, Orders: orders, Sales: sales, Events: env.Events}},
		SalesHandler:     &SalesHTTP{Svc: sales, Search: env.Search},
		InventoryHandler: &InventoryHTTP{Svc: &service.InventoryService{Repo: rp}},
		SchemaHandler:    &SchemaHTTP{Caps: caps},
		JWTSecret:        secret,
	})
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) product(t *testing.T, name, price string) int64 {
	t.Helper()
	p := models.Product{ProductName: name, Price: dec(price), PriceRegular: dec(price)}
	require.NoError(t, env.DB.Create(&p).Error)
	return p.ProductID
}

func (env *testEnv) user(t *testing.T, username string) int64 {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@shop.test",
		PasswordHash: "x",
		UserType:     "staff",
		IsActive:     true,
	}
	require.NoError(t, env.DB.Create(&u).Error)
	return u.UserID
}

func (env *testEnv) sale(t *testing.T, pid int64, qty int, price string) int64 {
	t.Helper()
	p := dec(price)
	id, err := env.Repo.CreateSale(context.Background(), repo.NewSale{
		Total:         p.Mul(decimal.NewFromInt(int64(qty))),
		PaymentMethod: "cash",
		Lines:         []repo.Line{{ProductID: &pid, Quantity: qty, Price: p}},
	})
	require.NoError(t, err)
	return id
}

func token(t *testing.T, id int64, role string) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(strconv.FormatInt(id, 10), role, time.Now().Add(time.Hour), testSecret)
	require.NoError(t, err)
	return tok
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
