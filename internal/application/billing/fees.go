package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// VendorDirectory looks up canonical vendor records.  Satisfied by
// vendor.Repository.
type VendorDirectory interface {
	FindByName(ctx context.Context, name string) (*vendor.Vendor, error)
}

// FeeService computes individual fee line items and appends them to an
// invoice-build buffer.  Every compute method follows the same error
// discipline: a configuration gap (missing flat rate, empty zone table)
// raises an advisory on the buffer and skips that fee; an empty record set is
// a silent no-op; storage connectivity faults propagate and abort the
// request.
type FeeService struct {
	vendors VendorDirectory
	filter  *RecordFilter
	rates   billing.RateRepository
	log     logging.Logger
}

// NewFeeService constructs a FeeService.
func NewFeeService(vendors VendorDirectory, filter *RecordFilter, rates billing.RateRepository, log logging.Logger) *FeeService {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FeeService{vendors: vendors, filter: filter, rates: rates, log: log.Named("fees")}
}

// flatRate resolves a flat-rate label, downgrading a configuration gap to an
// advisory.  The bool reports whether the caller should proceed.
func (s *FeeService) flatRate(ctx context.Context, b *billing.Builder, label string) (int64, bool, error) {
	price, err := s.rates.LookupRate(ctx, label)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeRateNotConfigured) {
			msg := fmt.Sprintf("단가 미등록: %s (요금 관리에서 등록 후 다시 계산하세요)", label)
			b.Advise(errors.ErrCodeRateNotConfigured, msg)
			s.log.Warn("flat rate not configured", logging.String("label", label))
			return 0, false, nil
		}
		return 0, false, err
	}
	return price, true, nil
}

// zoneTable resolves the vendor's courier schedule, downgrading an empty or
// missing table to an advisory.
func (s *FeeService) zoneTable(ctx context.Context, b *billing.Builder, plan common.RatePlan) (billing.ZoneTable, bool, error) {
	table, err := s.rates.LookupZoneTable(ctx, plan.OrDefault())
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeZoneTableEmpty) {
			msg := fmt.Sprintf("요금제 %s 의 구간 요금표가 비어 있습니다", plan.OrDefault())
			b.Advise(errors.ErrCodeZoneTableEmpty, msg)
			s.log.Warn("zone table empty", logging.String("plan", string(plan.OrDefault())))
			return billing.ZoneTable{}, false, nil
		}
		return billing.ZoneTable{}, false, err
	}
	return table, true, nil
}

// ComputeInspectionFee sums the piece counts of the vendor's inbound slips in
// the period and bills them at the 입고검수 rate.
func (s *FeeService) ComputeInspectionFee(ctx context.Context, b *billing.Builder, vendorName string, period common.DateRange) error {
	records, err := s.filter.Load(ctx, vendorName, common.SourceInboundSlip, period)
	if err != nil {
		return err
	}
	spec, _ := billing.SpecFor(common.SourceInboundSlip)
	var qty int64
	for _, r := range records {
		qty += billing.QtyOrZero(r.Value(spec.QuantityColumn))
	}
	if qty == 0 {
		return nil
	}
	price, ok, err := s.flatRate(ctx, b, billing.RateInboundInspection)
	if err != nil || !ok {
		return err
	}
	b.AppendLineItem(billing.RateInboundInspection, qty, price)
	return nil
}

// ComputeBasicShippingFee bills one 기본출고 per deduplicated shipping
// statistics row in the period.  A parcel shipped is a parcel billed, however
// many pieces it carries; re-uploaded rows with the same tracking number
// count once.
func (s *FeeService) ComputeBasicShippingFee(ctx context.Context, b *billing.Builder, vendorName string, period common.DateRange) error {
	records, err := s.filter.Load(ctx, vendorName, common.SourceShippingStats, period)
	if err != nil {
		return err
	}
	records = Dedupe(records, s.log)
	qty := int64(len(records))
	if qty == 0 {
		return nil
	}
	price, ok, err := s.flatRate(ctx, b, billing.RateBasicShipping)
	if err != nil || !ok {
		return err
	}
	b.AppendLineItem(billing.RateBasicShipping, qty, price)
	return nil
}

// tierLabel renders the line-item label for one courier zone band.
func tierLabel(prefix, band string) string {
	return fmt.Sprintf("%s (%s)", prefix, band)
}

// CourierFeePrefix and ReturnCourierFeePrefix prefix the per-band courier
// line labels.
const (
	CourierFeePrefix       = "택배요금"
	ReturnCourierFeePrefix = "반품택배요금"
)

// computeZonedFee loads one postal manifest, deduplicates it, buckets the
// shipments into the vendor's zone schedule, and appends one line per
// occupied band.  It returns the per-band counts so downstream fees can
// follow the same bucketing.
func (s *FeeService) computeZonedFee(ctx context.Context, b *billing.Builder, v *vendor.Vendor, period common.DateRange, sourceType common.SourceType, labelPrefix string) ([]TierCount, error) {
	records, err := s.filter.Load(ctx, v.Name, sourceType, period)
	if err != nil {
		return nil, err
	}
	records = Dedupe(records, s.log)
	if len(records) == 0 {
		return nil, nil
	}
	table, ok, err := s.zoneTable(ctx, b, v.RatePlan)
	if err != nil || !ok {
		return nil, err
	}
	spec, _ := billing.SpecFor(sourceType)
	counts := CountByTier(records, spec.VolumeColumn, table)
	for _, tc := range counts {
		b.AppendLineItem(tierLabel(labelPrefix, tc.Label), tc.Count, tc.UnitPrice)
	}
	return counts, nil
}

// ComputeCourierFee bills the vendor's outbound postal shipments per zone
// band of its rate plan and returns the band counts for the packaging-material
// fee.
func (s *FeeService) ComputeCourierFee(ctx context.Context, b *billing.Builder, v *vendor.Vendor, period common.DateRange) ([]TierCount, error) {
	return s.computeZonedFee(ctx, b, v, period, common.SourcePostalIntake, CourierFeePrefix)
}

// ComputeReturnCourierFee bills the vendor's returned postal shipments per
// zone band.
func (s *FeeService) ComputeReturnCourierFee(ctx context.Context, b *billing.Builder, v *vendor.Vendor, period common.DateRange) error {
	_, err := s.computeZonedFee(ctx, b, v, period, common.SourcePostalReturn, ReturnCourierFeePrefix)
	return err
}

// ComputeBoxFee bills the packaging material consumed by the outbound
// shipments, one line per occupied zone band of the courier fee.  A vendor
// packing in PP bags and supplying its own boxes switches the small bands to
// courier mailers.  Bands the material table has no row for are skipped.
func (s *FeeService) ComputeBoxFee(ctx context.Context, b *billing.Builder, v *vendor.Vendor, zoneCounts []TierCount) error {
	if len(zoneCounts) == 0 {
		return nil
	}
	schedule, err := s.rates.LookupMaterialRates(ctx)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeRateNotConfigured) {
			b.Advise(errors.ErrCodeRateNotConfigured,
				"포장재 단가표가 비어 있습니다 (요금 관리에서 등록 후 다시 계산하세요)")
			s.log.Warn("material rates not configured")
			return nil
		}
		return err
	}
	useMailer := v.Flags.PolyBag && v.Flags.CustomBox
	for _, tc := range zoneCounts {
		m, ok := schedule.PickFor(tc.Label, useMailer)
		if !ok {
			continue
		}
		b.AppendLineItem(m.Label, tc.Count, m.UnitPrice)
	}
	return nil
}

// ComputeRemoteAreaFee counts the vendor's outbound shipments flagged for
// remote-area delivery and bills the 도서산간 surcharge per shipment.  The
// surcharge is independent of the courier fee: a missing rate here raises an
// advisory without touching the zone lines.
func (s *FeeService) ComputeRemoteAreaFee(ctx context.Context, b *billing.Builder, vendorName string, period common.DateRange) error {
	records, err := s.filter.Load(ctx, vendorName, common.SourcePostalIntake, period)
	if err != nil {
		return err
	}
	records = Dedupe(records, s.log)
	var qty int64
	for _, r := range records {
		if strings.EqualFold(r.Value(billing.RemoteAreaColumn), "y") {
			qty++
		}
	}
	if qty == 0 {
		return nil
	}
	price, ok, err := s.flatRate(ctx, b, billing.RateRemoteArea)
	if err != nil || !ok {
		return err
	}
	b.AppendLineItem(billing.RateRemoteArea, qty, price)
	return nil
}

// ComputeReturnPickupFee bills one 반품회수 per deduplicated returned
// shipment in the period.
func (s *FeeService) ComputeReturnPickupFee(ctx context.Context, b *billing.Builder, vendorName string, period common.DateRange) error {
	records, err := s.filter.Load(ctx, vendorName, common.SourcePostalReturn, period)
	if err != nil {
		return err
	}
	records = Dedupe(records, s.log)
	qty := int64(len(records))
	if qty == 0 {
		return nil
	}
	price, ok, err := s.flatRate(ctx, b, billing.RateReturnPickup)
	if err != nil || !ok {
		return err
	}
	b.AppendLineItem(billing.RateReturnPickup, qty, price)
	return nil
}

// flagFee binds one service flag to the flat-rate line it gates and the
// earlier line its quantity derives from.
type flagFee struct {
	enabled bool
	label   string
	qtySrc  string
}

// ComputeFlagFees appends the flag-gated service fees.  Each derives its
// quantity from a line appended earlier in the same build: per-piece services
// (barcode labelling, poly bags) follow the inspected inbound count,
// per-parcel services (void fill, outbound video) follow the basic shipping
// count, and return video follows the return pickup count.  A flag whose
// source line is absent or zero contributes nothing.
func (s *FeeService) ComputeFlagFees(ctx context.Context, b *billing.Builder, v *vendor.Vendor) error {
	fees := []flagFee{
		{v.Flags.Barcode, billing.RateBarcode, billing.RateInboundInspection},
		{v.Flags.VoidFill, billing.RateVoidFill, billing.RateBasicShipping},
		{v.Flags.PolyBag, billing.RatePolyBagMedium, billing.RateInboundInspection},
		{v.Flags.OutboundVideo, billing.RateOutboundVideo, billing.RateBasicShipping},
		{v.Flags.ReturnVideo, billing.RateReturnVideo, billing.RateReturnPickup},
	}
	for _, f := range fees {
		if !f.enabled {
			continue
		}
		qty := b.QtyOf(f.qtySrc)
		if qty == 0 {
			continue
		}
		price, ok, err := s.flatRate(ctx, b, f.label)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		b.AppendLineItem(f.label, qty, price)
	}
	return nil
}

// ComputeCombinedPackFee bills the pieces packed beyond the second in each
// outbound parcel.  Quantity is the sum over the deduplicated shipping
// statistics rows of max(내품수량 - 2, 0); parcels of one or two pieces
// contribute nothing.
func (s *FeeService) ComputeCombinedPackFee(ctx context.Context, b *billing.Builder, vendorName string, period common.DateRange) error {
	records, err := s.filter.Load(ctx, vendorName, common.SourceShippingStats, period)
	if err != nil {
		return err
	}
	records = Dedupe(records, s.log)
	spec, _ := billing.SpecFor(common.SourceShippingStats)
	var qty int64
	for _, r := range records {
		if excess := billing.QtyOrZero(r.Value(spec.QuantityColumn)) - 2; excess > 0 {
			qty += excess
		}
	}
	if qty == 0 {
		return nil
	}
	price, ok, err := s.flatRate(ctx, b, billing.RateCombinedPack)
	if err != nil || !ok {
		return err
	}
	b.AppendLineItem(billing.RateCombinedPack, qty, price)
	return nil
}

// worklogKey groups work-log rows that fold into one invoice line.
type worklogKey struct {
	category string
	unit     int64
	memo     string
}

// ComputeWorklogItems folds the vendor's work-log rows in the period into
// invoice lines, one per distinct (category, unit price, memo) group with
// quantities summed.  Groups append in first-appearance order.  Rows with an
// empty category are skipped.
func (s *FeeService) ComputeWorklogItems(ctx context.Context, b *billing.Builder, vendorName string, period common.DateRange) error {
	records, err := s.filter.Load(ctx, vendorName, common.SourceWorkLog, period)
	if err != nil {
		return err
	}

	qtys := make(map[worklogKey]int64)
	var order []worklogKey
	for _, r := range records {
		category := r.Value(billing.WorkLogCategoryColumn)
		if category == "" {
			continue
		}
		key := worklogKey{
			category: category,
			unit:     billing.QtyOrZero(r.Value(billing.WorkLogUnitColumn)),
			memo:     r.Value(billing.WorkLogMemoColumn),
		}
		if _, seen := qtys[key]; !seen {
			order = append(order, key)
		}
		qtys[key] += billing.QtyOrZero(r.Value(billing.WorkLogQtyColumn))
	}

	for _, key := range order {
		qty := qtys[key]
		if qty == 0 {
			continue
		}
		label := key.category
		if key.memo != "" {
			label = fmt.Sprintf("%s (%s)", key.category, key.memo)
		}
		b.AppendLineItem(label, qty, key.unit)
	}
	return nil
}
