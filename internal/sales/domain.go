// Package sales holds the sale read model consumed by posting.
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates sale lifecycle values.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
	StatusVoided Status = "voided"
)

// Sale is the tenant-scoped transaction header. Posting is the only legal
// transition out of draft.
type Sale struct {
	ID              int64
	TenantID        int64
	Status          Status
	InvoiceNumber   string
	TransactionDate time.Time
	PostedBy        int64
	PostedAt        *time.Time
	CreatedAt       time.Time
}

// Line is an immutable posting input owned by its Sale.
type Line struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// Net returns the line's net revenue: qty*price - discount.
func (l Line) Net() decimal.Decimal {
	return l.Qty.Mul(l.UnitPrice).Sub(l.Discount)
}
