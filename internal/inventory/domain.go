package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostScale is the storage precision for unit costs. It is deliberately
// wider than the currency's display precision so that averaging over many
// moves does not compound rounding error.
const CostScale = 6

// Move is one append-style entry in the inventory ledger. On-hand quantity
// for a product as of a date is sum(qty_in) - sum(qty_out) over all moves
// with effective date <= that date, scoped to the tenant.
type Move struct {
	ID            int64
	TenantID      int64
	ProductID     int64
	QtyIn         decimal.Decimal
	QtyOut        decimal.Decimal
	UnitCost      decimal.Decimal
	EffectiveDate time.Time
	DocType       string
	DocID         int64
	CreatedAt     time.Time
}

// Totals aggregates the cumulative move history for a product up to a date.
// Qty is sum(qty_in) - sum(qty_out); Value is the matching monetary sum.
type Totals struct {
	Qty   decimal.Decimal
	Value decimal.Decimal
}
