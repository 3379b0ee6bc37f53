package billing

import (
	"sort"
	"strings"

	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// Well-known flat-rate labels.  These are rows of the flat-rate table, keyed
// by the exact label text the rate manager stores.
const (
	RateInboundInspection = "입고검수"
	RateRemoteArea        = "도서산간"
	RateBasicShipping     = "기본출고"
	RateReturnPickup      = "반품회수"
	RateReturnVideo       = "반품영상촬영"
	RateOutboundVideo     = "출고영상촬영"
	RateVoidFill          = "완충작업"
	RateBarcode           = "바코드 부착"
	RateCombinedPack      = "합포장"
	RatePolyBagMedium     = "PP 봉투 중형"
)

// ZoneBand is one labeled interval of the courier zone table: package volume
// in [MinCM, MaxCM] bills at UnitPrice.  A nil MaxCM means the band has no
// stated upper bound.
type ZoneBand struct {
	Label     string   `json:"label"`
	MinCM     float64  `json:"min_cm"`
	MaxCM     *float64 `json:"max_cm"`
	UnitPrice int64    `json:"unit_price"`
}

// ZoneTable is the ordered band list for one rate plan, sorted ascending by
// lower bound.
type ZoneTable struct {
	Plan  common.RatePlan `json:"plan"`
	Bands []ZoneBand      `json:"bands"`
}

// NewZoneTable sorts the bands ascending by lower bound and validates that
// the table is non-empty.
func NewZoneTable(plan common.RatePlan, bands []ZoneBand) (ZoneTable, error) {
	if len(bands) == 0 {
		return ZoneTable{}, errors.New(errors.ErrCodeZoneTableEmpty, "zone table has no bands").
			WithDetail("plan=" + string(plan))
	}
	sorted := make([]ZoneBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinCM < sorted[j].MinCM })
	return ZoneTable{Plan: plan.OrDefault(), Bands: sorted}, nil
}

// Resolve maps a volume reading to the band it bills under.
//
// A value matches band i when MinCM <= v <= MaxCM.  The final band in sorted
// order is open-ended: it matches every value at or above its lower bound
// regardless of any stated MaxCM, so oversized readings always land in the
// top tier instead of falling through.  Bands with a nil MaxCM behave the
// same way wherever they sit.  Fractional values falling between one band's
// cap and the next band's floor resolve to the lower band, keeping resolution
// total over all values at or above the first lower bound.
func (t ZoneTable) Resolve(v float64) (ZoneBand, bool) {
	for i, b := range t.Bands {
		if v < b.MinCM {
			continue
		}
		if i == len(t.Bands)-1 {
			return b, true
		}
		if b.MaxCM == nil || v <= *b.MaxCM || v < t.Bands[i+1].MinCM {
			return b, true
		}
	}
	return ZoneBand{}, false
}

// FlatRate is one row of the flat-rate table: a per-unit price for a labeled
// service.
type FlatRate struct {
	Label     string `json:"label"`
	UnitPrice int64  `json:"unit_price"`
}

// MaterialRate is one row of the packaging-material table: a material label
// and its per-unit price, keyed by the zone-band size it packs.
type MaterialRate struct {
	SizeCode  string `json:"size_code"`
	Label     string `json:"label"`
	UnitPrice int64  `json:"unit_price"`
}

// MaterialSchedule is the full packaging-material table.
type MaterialSchedule struct {
	Rates []MaterialRate `json:"rates"`
}

// Label fragments of the material table.  Mailer rows read like
// "택배 봉투 소형"; everything else used for packing is a 박스 row.
const (
	materialMailer      = "택배 봉투"
	materialMailerSmall = "소형"
	materialMailerLarge = "대형"
	materialBox         = "박스"
)

// PickFor selects the material billed for shipments of one zone band.  With
// useMailer set, 극소 and 소 shipments switch to the small courier mailer and
// 중 to the large one when those rows exist; every other case bills the
// band's 박스 row.  The bool is false when the schedule has no usable row for
// the band.
func (s MaterialSchedule) PickFor(sizeCode string, useMailer bool) (MaterialRate, bool) {
	if useMailer {
		switch sizeCode {
		case "극소", "소":
			if m, ok := s.find(sizeCode, materialMailer, materialMailerSmall); ok {
				return m, true
			}
		case "중":
			if m, ok := s.find(sizeCode, materialMailer, materialMailerLarge); ok {
				return m, true
			}
		}
	}
	return s.find(sizeCode, materialBox)
}

func (s MaterialSchedule) find(sizeCode string, fragments ...string) (MaterialRate, bool) {
next:
	for _, r := range s.Rates {
		if r.SizeCode != sizeCode {
			continue
		}
		for _, f := range fragments {
			if !strings.Contains(r.Label, f) {
				continue next
			}
		}
		return r, true
	}
	return MaterialRate{}, false
}
