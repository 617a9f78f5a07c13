package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Skotchmaster/bigbrew_pos/internal/models"
	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/Skotchmaster/bigbrew_pos/pkg/db"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func newCanonicalDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb := openDB(t)
	require.NoError(t, gdb.AutoMigrate(models.All()...))
	return gdb
}

func newRepo(t *testing.T, gdb *gorm.DB, policy ActorPolicy) *GormRepo {
	t.Helper()
	ctx := context.Background()
	r := schema.NewResolver(schema.GormColumns{DB: gdb}, schema.Overrides{}, logging.Discard())
	caps, err := schema.LoadCapabilities(ctx, r, false)
	require.NoError(t, err)

	rp := New(gdb, caps, policy, logging.Discard())
	rp.Now = func() time.Time { return fixedNow }
	return rp
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func seedProduct(t *testing.T, gdb *gorm.DB, name, price string) models.Product {
	t.Helper()
	p := models.Product{ProductName: name, Price: dec(price), PriceRegular: dec(price)}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func seedUser(t *testing.T, gdb *gorm.DB, username, userType string) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@bigbrew.test",
		PasswordHash: "x",
		UserType:     userType,
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func seedCustomer(t *testing.T, gdb *gorm.DB, first, last string) models.Customer {
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
	require.NoError(t, gdb.Create(&c).Error)
	return c
}

func countRows(t *testing.T, gdb *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Table(table).Count(&n).Error)
	return n
}
