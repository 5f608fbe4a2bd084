package posting

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-suite/meridian/internal/accounts"
	"github.com/meridian-suite/meridian/internal/inventory"
	"github.com/meridian-suite/meridian/internal/journal"
	"github.com/meridian-suite/meridian/internal/platform/db"
	"github.com/meridian-suite/meridian/internal/sales"
)

// Repository exposes the posting transaction boundary.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository gathers every operation the orchestrator performs inside one
// transaction. It spans the sale header, its lines, the account mapping, the
// inventory-move history and the journal tables so that posting is
// all-or-nothing.
type TxRepository interface {
	GetSaleForUpdate(ctx context.Context, tenantID, saleID int64) (sales.Sale, error)
	ListSaleLines(ctx context.Context, tenantID, saleID int64) ([]sales.Line, error)
	MarkSalePosted(ctx context.Context, tenantID, saleID, actorID int64, at time.Time) error

	ResolveAccount(ctx context.Context, tenantID int64, role accounts.Role) (int64, error)

	OnHand(ctx context.Context, tenantID, productID int64) (decimal.Decimal, error)
	MoveTotals(ctx context.Context, tenantID, productID int64, asOf time.Time) (inventory.Totals, error)
	StandardCost(ctx context.Context, tenantID, productID int64) (decimal.Decimal, error)
	InsertMove(ctx context.Context, mv inventory.Move) error
	DeleteMovesByDoc(ctx context.Context, tenantID int64, docType string, docID int64) error

	journal.Writer
	DeleteJournalsByDoc(ctx context.Context, tenantID int64, docType string, docID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed posting repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) GetSaleForUpdate(ctx context.Context, tenantID, saleID int64) (sales.Sale, error) {
	var s sales.Sale
	err := t.tx.QueryRow(ctx, `
		SELECT id, tenant_id, status, invoice_number, transaction_date, posted_by, posted_at, created_at
		FROM sales
		WHERE tenant_id = $1 AND id = $2
		FOR UPDATE
	`, tenantID, saleID).Scan(&s.ID, &s.TenantID, &s.Status, &s.InvoiceNumber, &s.TransactionDate, &s.PostedBy, &s.PostedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sales.Sale{}, ErrSaleNotFound
		}
		return sales.Sale{}, err
	}
	return s, nil
}

func (t *txRepository) ListSaleLines(ctx context.Context, tenantID, saleID int64) ([]sales.Line, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, sale_id, product_id, qty, unit_price, discount
		FROM sale_lines
		WHERE tenant_id = $1 AND sale_id = $2
		ORDER BY id
	`, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []sales.Line
	for rows.Next() {
		var l sales.Line
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Qty, &l.UnitPrice, &l.Discount); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (t *txRepository) MarkSalePosted(ctx context.Context, tenantID, saleID, actorID int64, at time.Time) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE sales
		SET status = $3, posted_by = $4, posted_at = $5, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, saleID, sales.StatusPosted, actorID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

// ResolveAccount returns the mapped ledger account for a role, or the
// unresolved sentinel when no mapping exists.
func (t *txRepository) ResolveAccount(ctx context.Context, tenantID int64, role accounts.Role) (int64, error) {
	var accountID int64
	err := t.tx.QueryRow(ctx, `
		SELECT account_id FROM account_mappings WHERE tenant_id = $1 AND role_key = $2
	`, tenantID, string(role)).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Unresolved, nil
		}
		return accounts.Unresolved, err
	}
	return accountID, nil
}

func (t *txRepository) OnHand(ctx context.Context, tenantID, productID int64) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := t.tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(qty_in - qty_out), 0)
		FROM inventory_moves
		WHERE tenant_id = $1 AND product_id = $2
	`, tenantID, productID).Scan(&qty)
	if err != nil {
		return decimal.Zero, err
	}
	return qty, nil
}

func (t *txRepository) MoveTotals(ctx context.Context, tenantID, productID int64, asOf time.Time) (inventory.Totals, error) {
	var totals inventory.Totals
	err := t.tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(qty_in - qty_out), 0),
		       COALESCE(SUM(qty_in * unit_cost - qty_out * unit_cost), 0)
		FROM inventory_moves
		WHERE tenant_id = $1 AND product_id = $2 AND effective_date <= $3
	`, tenantID, productID, asOf).Scan(&totals.Qty, &totals.Value)
	if err != nil {
		return inventory.Totals{}, err
	}
	return totals, nil
}

func (t *txRepository) StandardCost(ctx context.Context, tenantID, productID int64) (decimal.Decimal, error) {
	var cost decimal.Decimal
	err := t.tx.QueryRow(ctx, `
		SELECT COALESCE(standard_cost, 0) FROM products WHERE tenant_id = $1 AND id = $2
	`, tenantID, productID).Scan(&cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return cost, nil
}

func (t *txRepository) InsertMove(ctx context.Context, mv inventory.Move) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO inventory_moves (tenant_id, product_id, qty_in, qty_out, unit_cost, effective_date, doc_type, doc_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, mv.TenantID, mv.ProductID, mv.QtyIn, mv.QtyOut, mv.UnitCost, mv.EffectiveDate, mv.DocType, mv.DocID)
	return err
}

func (t *txRepository) DeleteMovesByDoc(ctx context.Context, tenantID int64, docType string, docID int64) error {
	_, err := t.tx.Exec(ctx, `
		DELETE FROM inventory_moves WHERE tenant_id = $1 AND doc_type = $2 AND doc_id = $3
	`, tenantID, docType, docID)
	return err
}

func (t *txRepository) InsertJournal(ctx context.Context, j journal.Journal) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO journals (tenant_id, external_ref, date, journal_type, memo, doc_type, doc_id, posted_by, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, j.TenantID, j.ExternalRef, j.Date, j.Type, j.Memo, j.DocType, j.DocID, j.PostedBy, j.PostedAt).Scan(&id)
	return id, err
}

func (t *txRepository) InsertEntry(ctx context.Context, e journal.Entry) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO journal_entries (journal_id, account_id, debit, credit, memo)
		VALUES ($1, $2, $3, $4, $5)
	`, e.JournalID, e.AccountID, e.Debit, e.Credit, e.Memo)
	return err
}

// DeleteJournalsByDoc clears journal headers and their entries as one set.
func (t *txRepository) DeleteJournalsByDoc(ctx context.Context, tenantID int64, docType string, docID int64) error {
	_, err := t.tx.Exec(ctx, `
		DELETE FROM journal_entries
		WHERE journal_id IN (SELECT id FROM journals WHERE tenant_id = $1 AND doc_type = $2 AND doc_id = $3)
	`, tenantID, docType, docID)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		DELETE FROM journals WHERE tenant_id = $1 AND doc_type = $2 AND doc_id = $3
	`, tenantID, docType, docID)
	return err
}
