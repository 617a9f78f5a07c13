package schema

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Skotchmaster/bigbrew_pos/internal/models"
	"github.com/Skotchmaster/bigbrew_pos/pkg/db"
	"github.com/Skotchmaster/bigbrew_pos/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadCapabilitiesGeneration(t *testing.T) {
	t.Parallel()

	mixed := legacyTables()
	mixed[TableSales] = normalizedTables()[TableSales]

	tests := []struct {
		name   string
		tables map[string][]string
		want   Generation
	}{
		{"legacy", legacyTables(), GenerationLegacy},
		{"normalized", normalizedTables(), GenerationNormalized},
		{"mixed", mixed, GenerationMixed},
		{"empty database", map[string][]string{}, GenerationUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewResolver(&fakeLister{tables: tt.tables}, Overrides{}, logging.Discard())
			c, err := LoadCapabilities(context.Background(), r, false)
			require.NoError(t, err)
			assert.Equal(t, DescriptorVersion, c.Version)
			assert.Equal(t, tt.want, c.Generation)
		})
	}
}

func TestLoadCapabilitiesStrict(t *testing.T) {
	t.Parallel()

	tables := normalizedTables()
	delete(tables, TableCustomers)
	r := NewResolver(&fakeLister{tables: tables}, Overrides{}, logging.Discard())

	_, err := LoadCapabilities(context.Background(), r, true)
	require.ErrorIs(t, err, ErrUnresolved)
	assert.Contains(t, err.Error(), TableCustomers)

	r = NewResolver(&fakeLister{tables: normalizedTables()}, Overrides{}, logging.Discard())
	c, err := LoadCapabilities(context.Background(), r, true)
	require.NoError(t, err)
	assert.Equal(t, "sale_id", c.Sales.Get(SaleID))
}

func TestCapabilitiesWriteYAML(t *testing.T) {
	t.Parallel()

	r := NewResolver(&fakeLister{tables: legacyTables()}, Overrides{}, logging.Discard())
	c, err := LoadCapabilities(context.Background(), r, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteYAML(&buf))

	var back Capabilities
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, GenerationLegacy, back.Generation)
	assert.Equal(t, "total_amount", back.Sales.Columns[TotalAmount])
	assert.Equal(t, "id", back.Catalog.Columns[ProductID])
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{
			name: "valid",
			in:   "version: 1\nsales:\n  total_amount: amount_due\ncatalog:\n  inv_qty: on_hand\n",
		},
		{
			name:    "unknown role",
			in:      "sales:\n  colour: red\n",
			wantErr: "unknown sales role",
		},
		{
			name:    "empty column",
			in:      "catalog:\n  prod_name: \"  \"\n",
			wantErr: "empty column",
		},
		{
			name:    "future version",
			in:      "version: 9\n",
			wantErr: "version 9",
		},
		{
			name:    "not yaml",
			in:      "sales: [",
			wantErr: "parse schema overrides",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseOverrides([]byte(tt.in))
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOverridesPinRoles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sales:\n  status: state\n  total_amount: amount_due\n"), 0o600))

	o, err := LoadOverrides(path)
	require.NoError(t, err)

	r := NewResolver(&fakeLister{tables: legacyTables()}, o, logging.Discard())
	m := r.Resolve(context.Background(), FamilySales)

	assert.Equal(t, "amount_due", m.Get(TotalAmount))
	assert.Equal(t, "state", m.Get(SaleStatus))
	assert.NotContains(t, m.Defaulted, SaleStatus)
	assert.Contains(t, m.Defaulted, SaleProofPath)

	none, err := LoadOverrides("")
	require.NoError(t, err)
	assert.Empty(t, none.Sales)

	_, err = LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestGormColumnsOnSQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gdb, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	lister := GormColumns{DB: gdb}

	cols, err := lister.Columns(ctx, TableSales)
	require.NoError(t, err)
	assert.Contains(t, cols, "sale_id")
	assert.Contains(t, cols, "total_amount")
	assert.Contains(t, cols, "proof_of_payment_path")

	_, err = lister.Columns(ctx, "no_such_table")
	require.Error(t, err)

	if pk, ok := lister.PrimaryKey(ctx, "users"); ok {
		assert.Equal(t, "user_id", pk)
	}

	r := NewResolver(lister, Overrides{}, logging.Discard())
	c, err := LoadCapabilities(ctx, r, true)
	require.NoError(t, err)
	assert.Equal(t, GenerationNormalized, c.Generation)
	assert.Equal(t, "sale_id", c.Sales.Get(SaleItemSaleFK))
	assert.Equal(t, "product_name", c.Catalog.Get(ProductName))
}
