package billing

import (
	"context"
	"time"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// EventPublisher announces finalized invoices to downstream consumers.
// Publishing is best effort; a broker fault never rolls back the write.
type EventPublisher interface {
	PublishInvoiceFinalized(ctx context.Context, inv *billing.Invoice) error
}

// Metrics receives billing counters.  A nil implementation is replaced by a
// no-op.
type Metrics interface {
	ObserveCompute(vendorName string, d time.Duration)
	AddAdvisories(n int)
	IncFinalized()
}

type nopMetrics struct{}

func (nopMetrics) ObserveCompute(string, time.Duration) {}
func (nopMetrics) AddAdvisories(int)                    {}
func (nopMetrics) IncFinalized()                        {}

// ComputeRequest names the vendor and period to bill.  Every fee line is
// derived from the source logs and rate tables.
type ComputeRequest struct {
	VendorName string           `json:"vendor_name"`
	Period     common.DateRange `json:"period"`
}

// ComputeResult is a draft invoice with the advisories raised while
// computing it.
type ComputeResult struct {
	Invoice    *billing.Invoice   `json:"invoice"`
	Advisories []billing.Advisory `json:"advisories,omitempty"`
}

// InvoiceService drives an invoice build end to end: it owns one
// session-scoped build buffer per Compute call, runs every fee computation in
// deterministic order, and persists the finalized result.  Compute is
// idempotent before finalization: every run re-derives all lines from source
// data into a fresh buffer.
type InvoiceService struct {
	vendors  VendorDirectory
	fees     *FeeService
	invoices billing.InvoiceRepository
	events   EventPublisher
	metrics  Metrics
	log      logging.Logger
}

// NewInvoiceService constructs an InvoiceService.  events and metrics may be
// nil.
func NewInvoiceService(vendors VendorDirectory, fees *FeeService, invoices billing.InvoiceRepository, events EventPublisher, metrics Metrics, log logging.Logger) *InvoiceService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &InvoiceService{
		vendors:  vendors,
		fees:     fees,
		invoices: invoices,
		events:   events,
		metrics:  metrics,
		log:      log.Named("invoice"),
	}
}

// Compute builds a draft invoice for the request.  Fee computations run in a
// fixed order so that flag-gated fees can derive quantities from lines
// appended before them; the order is also the line order of the invoice.
// Configuration gaps surface in the result's advisories; only storage
// connectivity faults fail the call.
func (s *InvoiceService) Compute(ctx context.Context, req ComputeRequest) (*ComputeResult, error) {
	start := time.Now()

	v, err := s.vendors.FindByName(ctx, req.VendorName)
	if err != nil {
		return nil, err
	}

	b := billing.NewBuilder()
	steps := []func() error{
		func() error { return s.fees.ComputeInspectionFee(ctx, b, v.Name, req.Period) },
		func() error { return s.fees.ComputeBasicShippingFee(ctx, b, v.Name, req.Period) },
		func() error {
			zoneCounts, err := s.fees.ComputeCourierFee(ctx, b, v, req.Period)
			if err != nil {
				return err
			}
			return s.fees.ComputeBoxFee(ctx, b, v, zoneCounts)
		},
		func() error { return s.fees.ComputeRemoteAreaFee(ctx, b, v.Name, req.Period) },
		func() error { return s.fees.ComputeReturnPickupFee(ctx, b, v.Name, req.Period) },
		func() error { return s.fees.ComputeReturnCourierFee(ctx, b, v, req.Period) },
		func() error { return s.fees.ComputeFlagFees(ctx, b, v) },
		func() error { return s.fees.ComputeCombinedPackFee(ctx, b, v.Name, req.Period) },
		func() error { return s.fees.ComputeWorklogItems(ctx, b, v.Name, req.Period) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	inv, err := b.BuildInvoice(v.Name, req.Period)
	if err != nil {
		return nil, err
	}

	advisories := b.Advisories()
	s.metrics.ObserveCompute(v.Name, time.Since(start))
	s.metrics.AddAdvisories(len(advisories))
	s.log.Info("invoice computed",
		logging.String("vendor", v.Name),
		logging.String("period", req.Period.String()),
		logging.Int("items", len(inv.Items)),
		logging.Int64("total", inv.TotalAmount),
		logging.Int("advisories", len(advisories)))

	return &ComputeResult{Invoice: inv, Advisories: advisories}, nil
}

// Finalize marks a draft invoice as final and persists it, replacing any
// earlier invoice for the same vendor and period in one transaction.  The
// finalized event is published best effort after the write commits.
func (s *InvoiceService) Finalize(ctx context.Context, inv *billing.Invoice) error {
	if err := inv.Finalize(); err != nil {
		return err
	}
	if err := s.invoices.SaveFinal(ctx, inv); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to persist finalized invoice")
	}
	s.metrics.IncFinalized()
	s.log.Info("invoice finalized",
		logging.String("id", inv.ID),
		logging.String("vendor", inv.Vendor),
		logging.String("period", inv.Period.String()),
		logging.Int64("total", inv.TotalAmount))

	if s.events != nil {
		if err := s.events.PublishInvoiceFinalized(ctx, inv); err != nil {
			s.log.Warn("finalized event publish failed",
				logging.String("id", inv.ID),
				logging.Err(err))
		}
	}
	return nil
}

// Get loads one invoice with its line items.
func (s *InvoiceService) Get(ctx context.Context, id string) (*billing.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

// History lists a vendor's invoice headers, newest first.
func (s *InvoiceService) History(ctx context.Context, vendorName string) ([]*billing.Invoice, error) {
	return s.invoices.ListByVendor(ctx, vendorName)
}
