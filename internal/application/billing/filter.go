// Package billing implements the fee resolution use cases: loading and
// filtering raw source records for a vendor and period, deduplicating
// shipments, resolving zone tiers, computing fee line items, and driving the
// invoice build session end to end.
package billing

import (
	"context"
	"strings"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// NameResolver resolves the full ordered name set a vendor is known by in one
// source log type.  Satisfied by vendor.IdentityService.
type NameResolver interface {
	ResolveNames(ctx context.Context, vendorName string, sourceType common.SourceType) ([]string, error)
}

// RecordFilter loads one source log and narrows it to a vendor and billing
// period.  Filtering is tolerant by design: a missing table, a missing date
// column, or unparsable cells shrink the result set instead of failing the
// request.  Only connectivity faults propagate.
type RecordFilter struct {
	resolver NameResolver
	records  billing.RecordRepository
	log      logging.Logger
}

// NewRecordFilter constructs a RecordFilter.
func NewRecordFilter(resolver NameResolver, records billing.RecordRepository, log logging.Logger) *RecordFilter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RecordFilter{resolver: resolver, records: records, log: log.Named("filter")}
}

// Load returns the rows of the given source log that belong to the vendor and
// fall inside the period, in stored order.
//
// Vendor matching follows the source's declared strategy: exact equality
// against the resolved name set, or case-insensitive substring match against
// the canonical name for logs without alias coverage.  The row date is read
// from the first of the source's candidate date columns present in the loaded
// set; rows whose date cell does not parse are excluded.  A source whose
// table was never uploaded, or whose rows carry none of the candidate date
// columns, yields an empty set with a log line.
func (f *RecordFilter) Load(ctx context.Context, vendorName string, sourceType common.SourceType, period common.DateRange) ([]billing.Record, error) {
	spec, ok := billing.SpecFor(sourceType)
	if !ok {
		return nil, errors.New(errors.ErrCodeSourceTypeInvalid, "unknown source type").
			WithDetail(string(sourceType))
	}

	names, err := f.resolver.ResolveNames(ctx, vendorName, sourceType)
	if err != nil {
		return nil, err
	}

	rows, err := f.records.Query(ctx, spec)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeSourceUnavailable) {
			f.log.Info("source log not uploaded, treating as empty",
				logging.String("source", string(sourceType)),
				logging.String("vendor", vendorName))
			return nil, nil
		}
		return nil, err
	}

	matched := matchVendor(rows, spec, names)
	if len(matched) == 0 {
		return nil, nil
	}

	dateCol, ok := billing.FirstColumn(matched, spec.DateColumns...)
	if !ok {
		f.log.Warn("no date column in source rows, treating as empty",
			logging.String("source", string(sourceType)),
			logging.String("vendor", vendorName))
		return nil, nil
	}

	out := make([]billing.Record, 0, len(matched))
	for _, r := range matched {
		day, ok := billing.ParseDay(r.Value(dateCol))
		if !ok {
			continue
		}
		if period.Contains(day) {
			out = append(out, r)
		}
	}
	f.log.Debug("source rows filtered",
		logging.String("source", string(sourceType)),
		logging.String("vendor", vendorName),
		logging.String("period", period.String()),
		logging.Int("loaded", len(rows)),
		logging.Int("kept", len(out)))
	return out, nil
}

// matchVendor keeps the rows whose vendor cell matches per the source's
// strategy.  The resolved name set always has the canonical name first.
func matchVendor(rows []billing.Record, spec billing.SourceSpec, names []string) []billing.Record {
	if len(names) == 0 {
		return nil
	}
	var out []billing.Record
	switch spec.Strategy {
	case billing.MatchCanonicalSubstring:
		canonical := strings.ToLower(names[0])
		for _, r := range rows {
			cell := strings.ToLower(r.Value(spec.VendorColumn))
			if cell != "" && strings.Contains(cell, canonical) {
				out = append(out, r)
			}
		}
	default:
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		for _, r := range rows {
			if _, ok := set[r.Value(spec.VendorColumn)]; ok {
				out = append(out, r)
			}
		}
	}
	return out
}
