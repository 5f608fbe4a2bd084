package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const onHandQueryTimeout = 5 * time.Second

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository serves advisory inventory reads outside the posting
// transaction. The posting flow never goes through it; it always recomputes
// from history inside its own transaction.
type Repository struct {
	q     querier
	group singleflight.Group
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// OnHand returns the current on-hand quantity for a product. Concurrent
// requests for the same tenant/product share one query. The shared query
// runs on a detached context so one cancelled caller cannot fail the reads
// of its followers.
func (r *Repository) OnHand(ctx context.Context, tenantID, productID int64) (decimal.Decimal, error) {
	key := fmt.Sprintf("%d:%d", tenantID, productID)
	ch := r.group.DoChan(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), onHandQueryTimeout)
		defer cancel()
		return r.queryOnHand(qctx, tenantID, productID)
	})
	select {
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return decimal.Zero, res.Err
		}
		return res.Val.(decimal.Decimal), nil
	}
}

func (r *Repository) queryOnHand(ctx context.Context, tenantID, productID int64) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(qty_in - qty_out), 0)
		FROM inventory_moves
		WHERE tenant_id = $1 AND product_id = $2
	`, tenantID, productID).Scan(&qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("inventory: on hand: %w", err)
	}
	return qty, nil
}
