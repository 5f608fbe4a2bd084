// Package posting implements the inventory-costed revenue posting engine.
package posting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-suite/meridian/internal/accounts"
	"github.com/meridian-suite/meridian/internal/inventory"
	"github.com/meridian-suite/meridian/internal/journal"
	"github.com/meridian-suite/meridian/internal/sales"
	"github.com/meridian-suite/meridian/internal/shared"
)

const (
	// DocTypeSale is the source-document type for sales invoices.
	DocTypeSale = "sale"

	journalTypeSales = "SALES"
)

// AuditPort abstracts the best-effort audit side channel.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the posting of confirmed sales: lock, validate,
// clear the old footprint, value lines, post the journal, finalize the
// header. Every step runs inside one transaction.
type Service struct {
	repo   Repository
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service.
func NewService(repo Repository, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PostSalesInvoice posts one draft sale for a tenant. It computes cost of
// goods sold from the moving-average move history, decrements stock, and
// writes one balanced journal. Re-running it for the same sale clears the
// prior footprint first, so the resulting state matches a single run.
func (s *Service) PostSalesInvoice(ctx context.Context, tenantID, saleID int64) error {
	if tenantID == 0 || saleID == 0 {
		return fmt.Errorf("%w: tenant and sale id required", ErrSaleNotFound)
	}
	actorID := shared.ActorFromContext(ctx)

	var (
		sale      sales.Sale
		totalNet  decimal.Decimal
		totalCost decimal.Decimal
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		sale, err = tx.GetSaleForUpdate(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if sale.Status != sales.StatusDraft {
			return fmt.Errorf("%w: status %s", ErrInvalidState, sale.Status)
		}

		acct, err := s.resolveRequiredAccounts(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		lines, err := tx.ListSaleLines(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyDocument
		}

		// Clearing first is what makes the rest idempotent: a re-post sees
		// the history without its own prior moves and journals.
		if err := s.clearFootprint(ctx, tx, tenantID, DocTypeSale, saleID); err != nil {
			return err
		}

		// Requested quantities accumulate per product across lines so a
		// document repeating a product cannot drive on-hand negative in
		// aggregate while each line passes alone.
		onHandByProduct := make(map[int64]decimal.Decimal, len(lines))
		requested := make(map[int64]decimal.Decimal, len(lines))
		for _, line := range lines {
			onHand, ok := onHandByProduct[line.ProductID]
			if !ok {
				var err error
				onHand, err = tx.OnHand(ctx, tenantID, line.ProductID)
				if err != nil {
					return err
				}
				onHandByProduct[line.ProductID] = onHand
			}
			cum := requested[line.ProductID].Add(line.Qty)
			requested[line.ProductID] = cum
			if err := inventory.EnsureAvailable(line.ProductID, onHand, cum); err != nil {
				return err
			}
		}

		totalNet, totalCost = decimal.Zero, decimal.Zero
		for _, line := range lines {
			cost, err := s.valueLine(ctx, tx, tenantID, line.ProductID, sale.TransactionDate)
			if err != nil {
				return err
			}
			mv := inventory.Move{
				TenantID:      tenantID,
				ProductID:     line.ProductID,
				QtyOut:        line.Qty,
				UnitCost:      cost,
				EffectiveDate: sale.TransactionDate,
				DocType:       DocTypeSale,
				DocID:         saleID,
			}
			if err := tx.InsertMove(ctx, mv); err != nil {
				return err
			}
			totalCost = totalCost.Add(line.Qty.Mul(cost))
			totalNet = totalNet.Add(line.Net())
		}

		memo := fmt.Sprintf("Sales invoice %s", sale.InvoiceNumber)
		poster := journal.NewPoster(tx)
		poster.WithNow(s.now)
		journalID, err := poster.CreateJournal(ctx, tenantID, sale.TransactionDate, journalTypeSales, memo, DocTypeSale, saleID, actorID)
		if err != nil {
			return err
		}
		// Matched pairs by construction: the balance invariant holds because
		// each amount is written once as a debit and once as a credit.
		if err := poster.AddEntry(ctx, journalID, acct.AR, totalNet, decimal.Zero, memo); err != nil {
			return err
		}
		if err := poster.AddEntry(ctx, journalID, acct.Revenue, decimal.Zero, totalNet, memo); err != nil {
			return err
		}
		if err := poster.AddEntry(ctx, journalID, acct.COGS, totalCost, decimal.Zero, memo); err != nil {
			return err
		}
		if err := poster.AddEntry(ctx, journalID, acct.Inventory, decimal.Zero, totalCost, memo); err != nil {
			return err
		}

		return tx.MarkSalePosted(ctx, tenantID, saleID, actorID, s.now().UTC())
	})
	if err != nil {
		return err
	}

	if s.audit != nil {
		if auditErr := s.audit.Record(ctx, shared.AuditLog{
			TenantID: tenantID,
			ActorID:  actorID,
			Action:   "posting.sale",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", saleID),
			Meta: map[string]any{
				"invoice_number": sale.InvoiceNumber,
				"total_net":      totalNet.StringFixed(journal.AmountScale),
				"total_cost":     totalCost.StringFixed(journal.AmountScale),
			},
			At: s.now(),
		}); auditErr != nil {
			s.logger.Warn("audit record failed", slog.Int64("sale_id", saleID), slog.Any("error", auditErr))
		}
	}
	return nil
}

func (s *Service) resolveRequiredAccounts(ctx context.Context, tx TxRepository, tenantID int64) (accounts.Set, error) {
	var set accounts.Set
	required := accounts.RequiredForSale()
	for _, role := range required {
		id, err := tx.ResolveAccount(ctx, tenantID, role)
		if err != nil {
			return accounts.Set{}, err
		}
		if err := set.Assign(role, id); err != nil {
			return accounts.Set{}, err
		}
	}
	if missing := set.Missing(required); len(missing) > 0 {
		return accounts.Set{}, fmt.Errorf("%w: %v", ErrConfigurationIncomplete, missing)
	}
	return set, nil
}

// clearFootprint deletes every inventory move and journal previously written
// for the document, inside the same transaction as the re-post, so a crash
// mid-repost cannot leave the ledger in a mixed old/new state.
func (s *Service) clearFootprint(ctx context.Context, tx TxRepository, tenantID int64, docType string, docID int64) error {
	if err := tx.DeleteMovesByDoc(ctx, tenantID, docType, docID); err != nil {
		return err
	}
	return tx.DeleteJournalsByDoc(ctx, tenantID, docType, docID)
}

func (s *Service) valueLine(ctx context.Context, tx TxRepository, tenantID, productID int64, asOf time.Time) (decimal.Decimal, error) {
	totals, err := tx.MoveTotals(ctx, tenantID, productID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	standard, err := tx.StandardCost(ctx, tenantID, productID)
	if err != nil {
		return decimal.Zero, err
	}
	cost, fellBack := inventory.AverageCost(totals, standard)
	if fellBack {
		// Flagged distinctly so finance can audit zero- or standard-cost
		// valuations after the fact.
		s.logger.Warn("costing fallback",
			slog.Int64("tenant_id", tenantID),
			slog.Int64("product_id", productID),
			slog.Time("as_of", asOf),
			slog.String("unit_cost", cost.String()),
		)
	}
	return cost, nil
}
