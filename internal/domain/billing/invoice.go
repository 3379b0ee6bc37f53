package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// InvoiceStatus is the lifecycle state of an invoice header.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceFinalized InvoiceStatus = "확정"
)

// LineItem is one billable row: label, quantity, unit price, and the derived
// amount.  Amount is always qty × unit price; it is recomputed on append and
// never trusted from upstream.
type LineItem struct {
	Label     string `json:"label"`
	Qty       int64  `json:"qty"`
	UnitPrice int64  `json:"unit_price"`
	Amount    int64  `json:"amount"`
}

// Advisory is a user-visible, non-fatal condition raised during fee
// computation — typically a configuration gap such as a missing flat rate.
// Advisories are collected on the build session and surfaced to the caller;
// they never abort the remaining fee computations.
type Advisory struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Invoice is a persisted invoice header with its line items.
type Invoice struct {
	ID          string           `json:"id"`
	Vendor      string           `json:"vendor"`
	Period      common.DateRange `json:"period"`
	Status      InvoiceStatus    `json:"status"`
	Items       []LineItem       `json:"items"`
	TotalAmount int64            `json:"total_amount"`
	Currency    string           `json:"currency"`
	CreatedAt   time.Time        `json:"created_at"`
	FinalizedAt *time.Time       `json:"finalized_at,omitempty"`
}

// Builder is the invoice-build buffer: the session-scoped accumulator every
// compute_* operation appends line items to.  It is an explicit object owned
// by one build session — never a process-wide singleton — so that concurrent
// sessions for different vendors cannot interleave items.
//
// Builder is not safe for concurrent use; a session is single-threaded by
// design.
type Builder struct {
	items      []LineItem
	advisories []Advisory
}

// NewBuilder returns an empty invoice-build buffer.
func NewBuilder() *Builder {
	return &Builder{}
}

// AppendLineItem appends one line item, recomputing amount as qty × unit
// price.  Items keep append order, which is the deterministic line order of
// the final invoice.
func (b *Builder) AppendLineItem(label string, qty, unitPrice int64) {
	b.items = append(b.items, LineItem{
		Label:     label,
		Qty:       qty,
		UnitPrice: unitPrice,
		Amount:    qty * unitPrice,
	})
}

// Advise records a user-visible advisory without aborting the build.
func (b *Builder) Advise(code errors.ErrorCode, message string) {
	b.advisories = append(b.advisories, Advisory{Code: code, Message: message})
}

// Items returns a copy of the accumulated line items in append order.
func (b *Builder) Items() []LineItem {
	out := make([]LineItem, len(b.items))
	copy(out, b.items)
	return out
}

// Advisories returns a copy of the collected advisories in raise order.
func (b *Builder) Advisories() []Advisory {
	out := make([]Advisory, len(b.advisories))
	copy(out, b.advisories)
	return out
}

// QtyOf returns the quantity of the first accumulated item with the given
// label, or 0.  Flag-gated fees derive their quantity from an earlier item
// (e.g., 바코드 부착 bills per 입고검수 unit).
func (b *Builder) QtyOf(label string) int64 {
	for _, it := range b.items {
		if it.Label == label {
			return it.Qty
		}
	}
	return 0
}

// Total returns the sum of all accumulated amounts.
func (b *Builder) Total() int64 {
	var sum int64
	for _, it := range b.items {
		sum += it.Amount
	}
	return sum
}

// Len returns the number of accumulated items.
func (b *Builder) Len() int { return len(b.items) }

// Reset clears items and advisories so the buffer can be reused for a
// recomputation.  Recomputing re-derives everything from source data, which
// is what makes fee computation idempotent before finalization.
func (b *Builder) Reset() {
	b.items = b.items[:0]
	b.advisories = b.advisories[:0]
}

// BuildInvoice freezes the buffer into a draft Invoice for the given vendor
// and period.  The buffer itself is left untouched.
func (b *Builder) BuildInvoice(vendorName string, period common.DateRange) (*Invoice, error) {
	if vendorName == "" {
		return nil, errors.New(errors.ErrCodeVendorNameEmpty, "vendor name cannot be empty")
	}
	inv := &Invoice{
		ID:          uuid.New().String(),
		Vendor:      vendorName,
		Period:      period,
		Status:      InvoiceDraft,
		Items:       b.Items(),
		TotalAmount: b.Total(),
		Currency:    "KRW",
		CreatedAt:   time.Now().UTC(),
	}
	return inv, nil
}

// Finalize marks the invoice as finalized.  Finalizing twice is a state
// violation.
func (inv *Invoice) Finalize() error {
	if inv.Status == InvoiceFinalized {
		return errors.New(errors.ErrCodeInvoiceFinalized, "invoice is already finalized").
			WithDetail("id=" + inv.ID)
	}
	now := time.Now().UTC()
	inv.Status = InvoiceFinalized
	inv.FinalizedAt = &now
	return nil
}
