package repo

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"gorm.io/gorm"
)

type GormRepo struct {
	DB     *gorm.DB
	Caps   *schema.Capabilities
	Policy ActorPolicy
	Now    func() time.Time
	Log    *slog.Logger
}

func New(db *gorm.DB, caps *schema.Capabilities, policy ActorPolicy, log *slog.Logger) *GormRepo {
	if log == nil {
		log = slog.Default()
	}
	if policy == "" {
		policy = ActorFabricate
	}
	return &GormRepo{
		DB:     db,
		Caps:   caps,
		Policy: policy,
		Now:    func() time.Time { return time.Now().UTC() },
		Log:    log.With("component", "repo"),
	}
}

func (r *GormRepo) sales() schema.Map {
	if r.Caps == nil {
		return schema.Conventional(schema.FamilySales)
	}
	return r.Caps.Sales
}

func (r *GormRepo) catalog() schema.Map {
	if r.Caps == nil {
		return schema.Conventional(schema.FamilyCatalog)
	}
	return r.Caps.Catalog
}

func (r *GormRepo) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func quote(db *gorm.DB, name string) string {
	return db.Statement.Quote(name)
}

// col renders alias.column with the column quoted for the connected dialect.
func col(db *gorm.DB, alias, name string) string {
	return alias + "." + quote(db, name)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// insertReturning builds an INSERT that hands back the generated key. With no
// columns the row is created from table defaults.
func insertReturning(db *gorm.DB, table string, cols []string, pk string) string {
	if len(cols) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s", quote(db, table), quote(db, pk))
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(db, c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		quote(db, table), strings.Join(quoted, ", "), placeholders(len(cols)), quote(db, pk))
}

func columnSet(cols []string) map[string]bool {
	out := make(map[string]bool, len(cols))
	for _, c := range cols {
		out[c] = true
	}
	return out
}
