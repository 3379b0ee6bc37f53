package billing

import (
	"context"

	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// RecordRepository provides read access to the raw source log tables.  The
// ingestion path that writes them is outside this core; here they are
// immutable inputs.
type RecordRepository interface {
	// Query returns every row of the source's table as column-keyed records
	// with trimmed column names.  A table that does not exist (a log never
	// uploaded this period) fails with ErrCodeSourceUnavailable, which
	// callers downgrade to an empty set; connectivity failures surface as
	// ErrCodeDatabaseError and are fatal to the enclosing request.
	Query(ctx context.Context, spec SourceSpec) ([]Record, error)
}

// RateRepository provides read access to the rate tables maintained by the
// rate-manager tooling.
type RateRepository interface {
	// LookupRate returns the per-unit price for a flat-rate label, or an
	// ErrCodeRateNotConfigured error when the label has no row.  A missing
	// rate is a configuration gap surfaced to the user, not a fatal fault.
	LookupRate(ctx context.Context, label string) (int64, error)

	// LookupZoneTable returns the ordered band list for a rate plan, or an
	// ErrCodeZoneTableEmpty error when the plan has no bands.
	LookupZoneTable(ctx context.Context, plan common.RatePlan) (ZoneTable, error)

	// LookupMaterialRates returns the packaging-material table, or an
	// ErrCodeRateNotConfigured error when it has no rows.
	LookupMaterialRates(ctx context.Context) (MaterialSchedule, error)
}

// InvoiceRepository persists invoice headers with their line items.  Writes
// are transactional: an existing invoice for the same (vendor, period) is
// deleted and reinserted atomically, so readers never observe a partial
// invoice.
type InvoiceRepository interface {
	// SaveFinal replaces any invoice for (inv.Vendor, inv.Period) with inv,
	// header and items in one transaction.
	SaveFinal(ctx context.Context, inv *Invoice) error

	// FindByID loads one invoice with items, or ErrCodeInvoiceNotFound.
	FindByID(ctx context.Context, id string) (*Invoice, error)

	// FindByPeriod loads the invoice for a vendor and exact period, or
	// ErrCodeInvoiceNotFound.
	FindByPeriod(ctx context.Context, vendorName string, period common.DateRange) (*Invoice, error)

	// ListByVendor returns invoice headers (no items) for a vendor, newest
	// first.
	ListByVendor(ctx context.Context, vendorName string) ([]*Invoice, error)
}
