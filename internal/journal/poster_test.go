package journal

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	journals []Journal
	entries  []Entry
	nextID   int64
}

func (w *memoryWriter) InsertJournal(_ context.Context, j Journal) (int64, error) {
	w.nextID++
	j.ID = w.nextID
	w.journals = append(w.journals, j)
	return j.ID, nil
}

func (w *memoryWriter) InsertEntry(_ context.Context, e Entry) error {
	w.entries = append(w.entries, e)
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateJournalStampsHeader(t *testing.T) {
	w := &memoryWriter{}
	p := NewPoster(w)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.WithNow(func() time.Time { return fixed })

	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	id, err := p.CreateJournal(context.Background(), 1, date, "SALES", "Sales invoice INV-1", "sale", 42, 9)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	require.Len(t, w.journals, 1)
	j := w.journals[0]
	require.Equal(t, int64(1), j.TenantID)
	require.Equal(t, "sale", j.DocType)
	require.Equal(t, int64(42), j.DocID)
	require.Equal(t, fixed, j.PostedAt)
	require.NotEqual(t, [16]byte{}, [16]byte(j.ExternalRef))
}

func TestAddEntrySkipsUnresolvedAccount(t *testing.T) {
	w := &memoryWriter{}
	p := NewPoster(w)

	err := p.AddEntry(context.Background(), 1, 0, dec("100"), decimal.Zero, "")
	require.NoError(t, err)
	require.Empty(t, w.entries)
}

func TestAddEntrySkipsZeroAmounts(t *testing.T) {
	w := &memoryWriter{}
	p := NewPoster(w)

	err := p.AddEntry(context.Background(), 1, 10, decimal.Zero, decimal.Zero, "")
	require.NoError(t, err)
	// rounds to zero at currency precision
	err = p.AddEntry(context.Background(), 1, 10, dec("0.001"), decimal.Zero, "")
	require.NoError(t, err)
	require.Empty(t, w.entries)
}

func TestAddEntryRejectsNegativeAmounts(t *testing.T) {
	w := &memoryWriter{}
	p := NewPoster(w)

	err := p.AddEntry(context.Background(), 1, 10, dec("-5"), decimal.Zero, "")
	require.ErrorIs(t, err, ErrNegativeAmount)
	require.Empty(t, w.entries)
}

func TestAddEntryRoundsToAmountScale(t *testing.T) {
	w := &memoryWriter{}
	p := NewPoster(w)

	require.NoError(t, p.AddEntry(context.Background(), 1, 10, dec("33.3333"), decimal.Zero, ""))
	require.Len(t, w.entries, 1)
	require.Equal(t, "33.33", w.entries[0].Debit.String())
}

func TestBalancedPairsKeepTotalsEqual(t *testing.T) {
	w := &memoryWriter{}
	p := NewPoster(w)
	ctx := context.Background()

	id, err := p.CreateJournal(ctx, 1, time.Now(), "SALES", "", "sale", 1, 0)
	require.NoError(t, err)

	net := dec("350")
	cost := dec("200")
	require.NoError(t, p.AddEntry(ctx, id, 1100, net, decimal.Zero, ""))
	require.NoError(t, p.AddEntry(ctx, id, 4000, decimal.Zero, net, ""))
	require.NoError(t, p.AddEntry(ctx, id, 5000, cost, decimal.Zero, ""))
	require.NoError(t, p.AddEntry(ctx, id, 1200, decimal.Zero, cost, ""))

	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range w.entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	require.True(t, debits.Equal(credits))
	require.True(t, debits.Equal(dec("550")))
}
