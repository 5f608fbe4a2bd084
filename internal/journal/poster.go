package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Writer is the transactional sink the Poster writes through.
type Writer interface {
	InsertJournal(ctx context.Context, j Journal) (int64, error)
	InsertEntry(ctx context.Context, e Entry) error
}

// ErrNegativeAmount indicates a debit or credit below zero.
var ErrNegativeAmount = errors.New("journal: amounts must be non-negative")

// Poster creates journal headers and writes entries. It does not re-verify
// the balance invariant at write time; the orchestrator upholds it by always
// writing matched debit/credit pairs.
type Poster struct {
	w   Writer
	now func() time.Time
}

// NewPoster constructs Poster.
func NewPoster(w Writer) *Poster {
	return &Poster{w: w, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (p *Poster) WithNow(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// CreateJournal inserts one journal header for a posting event.
func (p *Poster) CreateJournal(ctx context.Context, tenantID int64, date time.Time, journalType, memo, docType string, docID, postedBy int64) (int64, error) {
	j := Journal{
		TenantID:    tenantID,
		ExternalRef: uuid.New(),
		Date:        date,
		Type:        journalType,
		Memo:        memo,
		DocType:     docType,
		DocID:       docID,
		PostedBy:    postedBy,
		PostedAt:    p.now().UTC(),
	}
	return p.w.InsertJournal(ctx, j)
}

// AddEntry writes one journal line. Entries with an unresolved account id are
// skipped so a missing optional mapping cannot corrupt an otherwise valid
// journal; required roles are validated before posting ever reaches here.
// Zero-amount entries are skipped entirely, not written.
func (p *Poster) AddEntry(ctx context.Context, journalID, accountID int64, debit, credit decimal.Decimal, memo string) error {
	if accountID == 0 {
		return nil
	}
	if debit.IsNegative() || credit.IsNegative() {
		return ErrNegativeAmount
	}
	debit = debit.Round(AmountScale)
	credit = credit.Round(AmountScale)
	if debit.IsZero() && credit.IsZero() {
		return nil
	}
	return p.w.InsertEntry(ctx, Entry{
		JournalID: journalID,
		AccountID: accountID,
		Debit:     debit,
		Credit:    credit,
		Memo:      memo,
	})
}
