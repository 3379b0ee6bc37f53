package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

type postgresInvoiceRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresInvoiceRepo constructs the invoice repository.
func NewPostgresInvoiceRepo(conn *postgres.Connection, log logging.Logger) billing.InvoiceRepository {
	return &postgresInvoiceRepo{conn: conn, log: log}
}

// SaveFinal replaces any invoice for (vendor, period) with inv in one
// transaction: delete the old header (items cascade), insert the new header,
// insert the items.  Readers never observe a partial invoice.
func (r *postgresInvoiceRepo) SaveFinal(ctx context.Context, inv *billing.Invoice) error {
	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM invoices
		WHERE vendor_name = $1 AND period_from = $2 AND period_to = $3
	`, inv.Vendor, inv.Period.From, inv.Period.To)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete prior invoice")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (id, vendor_name, period_from, period_to, status,
			total_amount, currency, created_at, finalized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, inv.ID, inv.Vendor, inv.Period.From, inv.Period.To, string(inv.Status),
		inv.TotalAmount, inv.Currency, inv.CreatedAt, inv.FinalizedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert invoice header")
	}

	for i, item := range inv.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_id, position, label, qty, unit_price, amount)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, inv.ID, i, item.Label, item.Qty, item.UnitPrice, item.Amount)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert invoice item")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit invoice")
	}
	r.log.Info("invoice persisted",
		logging.String("id", inv.ID),
		logging.String("vendor", inv.Vendor),
		logging.Int("items", len(inv.Items)))
	return nil
}

func (r *postgresInvoiceRepo) FindByID(ctx context.Context, id string) (*billing.Invoice, error) {
	inv, err := r.scanHeader(r.conn.DB().QueryRowContext(ctx, `
		SELECT id, vendor_name, period_from, period_to, status,
			total_amount, currency, created_at, finalized_at
		FROM invoices WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *postgresInvoiceRepo) FindByPeriod(ctx context.Context, vendorName string, period common.DateRange) (*billing.Invoice, error) {
	inv, err := r.scanHeader(r.conn.DB().QueryRowContext(ctx, `
		SELECT id, vendor_name, period_from, period_to, status,
			total_amount, currency, created_at, finalized_at
		FROM invoices
		WHERE vendor_name = $1 AND period_from = $2 AND period_to = $3
	`, vendorName, period.From, period.To))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *postgresInvoiceRepo) ListByVendor(ctx context.Context, vendorName string) ([]*billing.Invoice, error) {
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT id, vendor_name, period_from, period_to, status,
			total_amount, currency, created_at, finalized_at
		FROM invoices WHERE vendor_name = $1
		ORDER BY period_from DESC
	`, vendorName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list invoices")
	}
	defer rows.Close()

	var out []*billing.Invoice
	for rows.Next() {
		inv, err := r.scanHeader(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate invoices")
	}
	return out, nil
}

func (r *postgresInvoiceRepo) scanHeader(row rowScanner) (*billing.Invoice, error) {
	var (
		inv         billing.Invoice
		status      string
		from, to    time.Time
		finalizedAt sql.NullTime
	)
	err := row.Scan(&inv.ID, &inv.Vendor, &from, &to, &status,
		&inv.TotalAmount, &inv.Currency, &inv.CreatedAt, &finalizedAt)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeInvoiceNotFound, "invoice not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan invoice")
	}
	period, err := common.NewDateRange(from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid stored period")
	}
	inv.Period = period
	inv.Status = billing.InvoiceStatus(status)
	if finalizedAt.Valid {
		t := finalizedAt.Time.UTC()
		inv.FinalizedAt = &t
	}
	return &inv, nil
}

func (r *postgresInvoiceRepo) loadItems(ctx context.Context, inv *billing.Invoice) error {
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT label, qty, unit_price, amount
		FROM invoice_items WHERE invoice_id = $1
		ORDER BY position
	`, inv.ID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load invoice items")
	}
	defer rows.Close()

	for rows.Next() {
		var item billing.LineItem
		if err := rows.Scan(&item.Label, &item.Qty, &item.UnitPrice, &item.Amount); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan invoice item")
		}
		inv.Items = append(inv.Items, item)
	}
	return rows.Err()
}
