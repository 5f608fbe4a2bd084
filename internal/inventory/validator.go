package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsufficientStockError reports that a requested quantity exceeds on-hand.
type InsufficientStockError struct {
	ProductID int64
	OnHand    decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for product %d: on hand %s, requested %s",
		e.ProductID, e.OnHand.String(), e.Requested.String())
}

// EnsureAvailable confirms on-hand quantity covers the requested quantity.
// The check is advisory per line; the caller aborts the whole posting on the
// first failure rather than attempting partial fulfillment.
func EnsureAvailable(productID int64, onHand, requested decimal.Decimal) error {
	if onHand.LessThan(requested) {
		return &InsufficientStockError{ProductID: productID, OnHand: onHand, Requested: requested}
	}
	return nil
}
