// Package common holds the small set of types shared across layer boundaries:
// source-log identifiers, rate-plan tags, and the billing period window.
// Nothing here may import from internal/.
package common

import (
	"fmt"
	"time"
)

// SourceType identifies one of the fixed raw operational log categories.
// The string values double as the physical table names of the raw logs.
type SourceType string

const (
	// SourceInboundSlip is the inbound receiving slip log (입고전표).
	SourceInboundSlip SourceType = "inbound_slip"

	// SourceShippingStats is the outbound shipping statistics log (배송통계).
	SourceShippingStats SourceType = "shipping_stats"

	// SourcePostalIntake is the postal pickup manifest (우체국 접수, kpost_in).
	SourcePostalIntake SourceType = "kpost_in"

	// SourcePostalReturn is the postal return manifest (우체국 반품, kpost_ret).
	SourcePostalReturn SourceType = "kpost_ret"

	// SourceWorkLog is the daily work log (작업일지).
	SourceWorkLog SourceType = "work_log"

	// SourceAll marks an alias valid for every source log type.
	SourceAll SourceType = "all"
)

// AllSourceTypes lists every concrete source log type, in the order fee
// computations consume them.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceInboundSlip,
		SourceShippingStats,
		SourcePostalIntake,
		SourcePostalReturn,
		SourceWorkLog,
	}
}

// Valid reports whether t names a known source log type (SourceAll included).
func (t SourceType) Valid() bool {
	switch t {
	case SourceInboundSlip, SourceShippingStats, SourcePostalIntake,
		SourcePostalReturn, SourceWorkLog, SourceAll:
		return true
	}
	return false
}

// RatePlan tags a vendor with the courier rate schedule applied to its
// shipments.  Plans are rows in the zone table, not a closed Go enum, but
// STD is the documented default for vendors with no explicit plan.
type RatePlan string

// RatePlanStandard is the default courier rate plan.
const RatePlanStandard RatePlan = "STD"

// OrDefault returns the receiver, or RatePlanStandard when empty.
func (p RatePlan) OrDefault() RatePlan {
	if p == "" {
		return RatePlanStandard
	}
	return p
}

// DateRange is a billing period window, inclusive on both bounds, compared at
// day granularity.  From and To are normalised to midnight UTC.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// day truncates t to midnight UTC, discarding wall-clock time and zone.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDateRange builds a DateRange from two timestamps, truncated to days.
// Returns an error when from is after to.
func NewDateRange(from, to time.Time) (DateRange, error) {
	f, t := day(from), day(to)
	if f.After(t) {
		return DateRange{}, fmt.Errorf("invalid date range: %s after %s",
			f.Format("2006-01-02"), t.Format("2006-01-02"))
	}
	return DateRange{From: f, To: t}, nil
}

// Contains reports whether t falls inside the window, inclusive on both
// bounds, at day granularity.
func (r DateRange) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// String renders the window as "YYYY-MM-DD..YYYY-MM-DD".
func (r DateRange) String() string {
	return r.From.Format("2006-01-02") + ".." + r.To.Format("2006-01-02")
}
