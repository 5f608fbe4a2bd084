package inventory

import "github.com/shopspring/decimal"

// AverageCost computes the moving-average unit cost from cumulative history
// totals. When the net quantity on hand is zero or negative the history
// carries no usable denominator; the product's standard cost is used instead,
// and failing that, zero. The valuation helper never errors: aborting a
// posting over a missing historical cost is worse than valuing at zero and
// flagging for review. FellBack reports that the fallback path was taken so
// the caller can log it distinctly.
func AverageCost(totals Totals, standardCost decimal.Decimal) (cost decimal.Decimal, fellBack bool) {
	if totals.Qty.IsPositive() {
		return totals.Value.Div(totals.Qty).Round(CostScale), false
	}
	if standardCost.IsPositive() {
		return standardCost.Round(CostScale), true
	}
	return decimal.Zero, true
}
