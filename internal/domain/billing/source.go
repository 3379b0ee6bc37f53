package billing

import "github.com/turtacn/fulfill-billing/pkg/types/common"

// MatchStrategy selects how a source log's vendor-identifying column is
// matched against a vendor's resolved name set.
type MatchStrategy int

const (
	// MatchAliasExact trims the cell and requires exact equality with one of
	// the resolved names (canonical + aliases).
	MatchAliasExact MatchStrategy = iota

	// MatchCanonicalSubstring does a case-insensitive substring match against
	// the canonical name only.  Documented fallback for logs without alias
	// coverage; it can over-match when one vendor's name contains another's.
	MatchCanonicalSubstring
)

// TrackingColumns is the priority-ordered list of shipment-identifier column
// names.  Deduplication keys on the first of these present in a record set.
var TrackingColumns = []string{
	"등기번호",
	"송장번호",
	"운송장번호",
	"TrackingNo",
	"tracking_no",
}

// SourceSpec describes the fixed shape of one raw source log: where the
// vendor name lives, which columns may carry the row date (tried in order),
// and how vendor matching works for that log.
type SourceSpec struct {
	Type common.SourceType

	// Table is the physical table name of the raw log.
	Table string

	// VendorColumn identifies the sender/vendor cell.
	VendorColumn string

	// DateColumns are candidate date column names in fallback order; the
	// first one present in a loaded record set is used for the window filter.
	DateColumns []string

	// VolumeColumn carries the package volume measure (cm), when the log has
	// one.
	VolumeColumn string

	// QuantityColumn carries a per-row piece count, when the log has one.
	QuantityColumn string

	// Strategy selects the vendor matching rule.
	Strategy MatchStrategy
}

// sourceSpecs is keyed by source type; table names equal the type values.
var sourceSpecs = map[common.SourceType]SourceSpec{
	common.SourceInboundSlip: {
		Type:           common.SourceInboundSlip,
		Table:          "inbound_slip",
		VendorColumn:   "공급처",
		DateColumns:    []string{"작업일"},
		QuantityColumn: "수량",
		Strategy:       MatchAliasExact,
	},
	common.SourceShippingStats: {
		Type:         common.SourceShippingStats,
		Table:        "shipping_stats",
		VendorColumn: "공급처",
		// Upload batches disagree on the date column; registration date is
		// the documented substitute when the ship date is absent.
		DateColumns:    []string{"배송일", "송장등록일", "출고일자", "기록일자", "등록일자"},
		QuantityColumn: "내품수량",
		Strategy:       MatchCanonicalSubstring,
	},
	common.SourcePostalIntake: {
		Type:         common.SourcePostalIntake,
		Table:        "kpost_in",
		VendorColumn: "발송인명",
		DateColumns:  []string{"접수일자"},
		VolumeColumn: "부피",
		Strategy:     MatchAliasExact,
	},
	common.SourcePostalReturn: {
		Type:         common.SourcePostalReturn,
		Table:        "kpost_ret",
		VendorColumn: "수취인명",
		DateColumns:  []string{"배달일자"},
		VolumeColumn: "우편물부피",
		Strategy:     MatchAliasExact,
	},
	common.SourceWorkLog: {
		Type:         common.SourceWorkLog,
		Table:        "work_log",
		VendorColumn: "업체명",
		DateColumns:  []string{"날짜"},
		Strategy:     MatchAliasExact,
	},
}

// RemoteAreaColumn flags postal-intake rows destined for remote areas
// (도서산간); the value "y" marks a surchargeable shipment.
const RemoteAreaColumn = "도서행"

// Work-log columns used when folding work-log rows into invoice items.
const (
	WorkLogCategoryColumn = "분류"
	WorkLogUnitColumn     = "단가"
	WorkLogQtyColumn      = "수량"
	WorkLogAmountColumn   = "합계"
	WorkLogMemoColumn     = "비고1"
)

// SpecFor returns the source descriptor for a source type.
func SpecFor(t common.SourceType) (SourceSpec, bool) {
	s, ok := sourceSpecs[t]
	return s, ok
}
