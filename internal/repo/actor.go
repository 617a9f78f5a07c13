package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/bigbrew_pos/internal/hash"
	"github.com/Skotchmaster/bigbrew_pos/internal/schema"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNoActor = errors.New("no actor available")

// ActorPolicy decides what happens when a sale arrives without a valid actor.
type ActorPolicy string

const (
	// ActorFabricate discovers an existing account and creates a system one as a last resort.
	ActorFabricate ActorPolicy = "fabricate"
	// ActorDiscover never creates accounts; an unattributed sale relies on a nullable actor column.
	ActorDiscover ActorPolicy = "discover"
	// ActorRequired only accepts a supplied, existing actor.
	ActorRequired ActorPolicy = "required"
)

const (
	ActorTable  = "users"
	ActorColumn = "user_id"
)

var elevatedRoles = []string{"admin", "administrator", "manager"}

// resolveActor runs inside the sale transaction so a fabricated account is
// rolled back together with a failed sale.
func (r *GormRepo) resolveActor(ctx context.Context, tx *gorm.DB, supplied *int64) (*int64, error) {
	lister := schema.GormColumns{DB: tx}
	cols, err := lister.Columns(ctx, ActorTable)
	if err != nil {
		r.Log.Warn("actor_table_unreadable", "error", err)
	}
	pk := actorPK(ctx, lister, cols)

	if supplied != nil {
		if r.actorExists(tx, pk, cols, *supplied) {
			return supplied, nil
		}
		r.Log.Warn("actor_not_found", "actor_id", *supplied)
	}
	if r.Policy == ActorRequired {
		return nil, fmt.Errorf("%w: an authenticated actor is required", ErrNoActor)
	}

	if id, ok := r.discoverActor(tx, pk, cols); ok {
		r.Log.Debug("actor_discovered", "actor_id", id)
		return &id, nil
	}
	if r.Policy == ActorDiscover {
		r.Log.Warn("sale_unattributed")
		return nil, nil
	}

	id, err := r.fabricateActor(tx, pk, cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoActor, err)
	}
	r.Log.Info("actor_fabricated", "actor_id", id)
	return &id, nil
}

func actorPK(ctx context.Context, lister schema.GormColumns, cols []string) string {
	if len(cols) == 0 {
		return ActorColumn
	}
	if pk, ok := lister.PrimaryKey(ctx, ActorTable); ok {
		return pk
	}
	has := columnSet(cols)
	switch {
	case has[ActorColumn]:
		return ActorColumn
	case has["id"]:
		return "id"
	default:
		return cols[0]
	}
}

func (r *GormRepo) actorExists(tx *gorm.DB, pk string, cols []string, id int64) bool {
	if len(cols) == 0 {
		return false
	}
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", quote(tx, ActorTable), quote(tx, pk))
	if err := tx.Raw(q, id).Scan(&n).Error; err != nil {
		r.Log.Warn("actor_lookup_failed", "error", err)
		return false
	}
	return n > 0
}

// discoverActor prefers an elevated account and falls back to any account.
func (r *GormRepo) discoverActor(tx *gorm.DB, pk string, cols []string) (int64, bool) {
	if len(cols) == 0 {
		return 0, false
	}
	has := columnSet(cols)
	base := fmt.Sprintf("SELECT %s FROM %s", quote(tx, pk), quote(tx, ActorTable))
	order := fmt.Sprintf(" ORDER BY %s LIMIT 1", quote(tx, pk))

	var ids []int64
	if has["user_type"] {
		q := base + fmt.Sprintf(" WHERE %s IN ?", quote(tx, "user_type")) + order
		if err := tx.Raw(q, elevatedRoles).Scan(&ids).Error; err != nil {
			r.Log.Warn("actor_lookup_failed", "error", err)
		}
	}
	if len(ids) == 0 {
		if err := tx.Raw(base+order).Scan(&ids).Error; err != nil {
			r.Log.Warn("actor_lookup_failed", "error", err)
		}
	}
	if len(ids) == 0 {
		return 0, false
	}
	if !r.actorExists(tx, pk, cols, ids[0]) {
		return 0, false
	}
	return ids[0], true
}

type actorInsert struct {
	cols []string
	args []any
}

// fabricateActor fills whichever optional columns the table has. Each attempt
// runs in a savepoint so a rejected insert does not poison the sale.
func (r *GormRepo) fabricateActor(tx *gorm.DB, pk string, cols []string) (int64, error) {
	if len(cols) == 0 {
		return 0, errors.New("actor table not available")
	}
	has := columnSet(cols)

	placeholder, err := hash.Placeholder()
	if err != nil {
		return 0, fmt.Errorf("credential placeholder: %w", err)
	}
	login := "system-" + uuid.NewString()[:8]

	candidates := []struct {
		col string
		val any
	}{
		{"username", login},
		{"email", login + "@local"},
		{"password_hash", placeholder},
		{"password", placeholder},
		{"user_type", "system"},
		{"role", "system"},
		{"first_name", "System"},
		{"last_name", "User"},
		{"is_active", true},
	}

	var full actorInsert
	for _, c := range candidates {
		if has[c.col] {
			full.cols = append(full.cols, c.col)
			full.args = append(full.args, c.val)
		}
	}
	attempts := []actorInsert{full}
	if len(full.cols) > 0 {
		attempts = append(attempts, actorInsert{})
	}

	var lastErr error
	for _, a := range attempts {
		var id int64
		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Raw(insertReturning(sp, ActorTable, a.cols, pk), a.args...).Scan(&id).Error
		})
		if err == nil && id > 0 {
			return id, nil
		}
		if err == nil {
			err = errors.New("insert returned no id")
		}
		r.Log.Warn("actor_insert_failed", "columns", a.cols, "error", err)
		lastErr = err
	}
	return 0, lastErr
}
