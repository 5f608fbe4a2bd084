// Package journal models double-entry journals and writes their lines.
package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountScale is the currency precision for journal amounts.
const AmountScale = 2

// Journal is the header of one posting event. DocType+DocID reference the
// source document and act as the idempotency key for footprint clearing.
type Journal struct {
	ID          int64
	TenantID    int64
	ExternalRef uuid.UUID
	Date        time.Time
	Type        string
	Memo        string
	DocType     string
	DocID       int64
	PostedBy    int64
	PostedAt    time.Time
	CreatedAt   time.Time
}

// Entry stores a debit or credit amount for an account. Amounts are
// non-negative; a conceptual line carries either a debit or a credit.
type Entry struct {
	ID        int64
	JournalID int64
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}
