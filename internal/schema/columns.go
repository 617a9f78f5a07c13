package schema

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormColumns lists columns through the dialect's migrator, so the same code
// works on sqlite and postgres.
type GormColumns struct {
	DB *gorm.DB
}

func (g GormColumns) Columns(ctx context.Context, table string) ([]string, error) {
	m := g.DB.WithContext(ctx).Migrator()
	if !m.HasTable(table) {
		return nil, fmt.Errorf("table %s not found", table)
	}

	types, err := m.ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("column types of %s: %w", table, err)
	}

	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name())
	}
	return names, nil
}

// PrimaryKey returns the first column flagged as primary key, if the dialect reports one.
func (g GormColumns) PrimaryKey(ctx context.Context, table string) (string, bool) {
	types, err := g.DB.WithContext(ctx).Migrator().ColumnTypes(table)
	if err != nil {
		return "", false
	}
	for _, t := range types {
		if pk, ok := t.PrimaryKey(); ok && pk {
			return t.Name(), true
		}
	}
	return "", false
}
