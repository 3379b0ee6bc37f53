package billing

import (
	"github.com/turtacn/fulfill-billing/internal/domain/billing"
)

// TierCount is the shipment count that landed in one zone band.
type TierCount struct {
	Label     string
	UnitPrice int64
	Count     int64
}

// CountByTier buckets a deduplicated record set into the zone table's bands
// by the volume column.  Missing or malformed volume cells coerce to 0 and
// land in the smallest band.  The result follows the table's band order and
// omits bands no shipment landed in, so line items come out in a stable,
// schedule-defined order.
func CountByTier(records []billing.Record, volumeColumn string, table billing.ZoneTable) []TierCount {
	counts := make(map[string]int64, len(table.Bands))
	for _, r := range records {
		v := billing.VolumeOrZero(r.Value(volumeColumn))
		band, ok := table.Resolve(v)
		if !ok {
			continue
		}
		counts[band.Label]++
	}

	out := make([]TierCount, 0, len(counts))
	for _, b := range table.Bands {
		if n := counts[b.Label]; n > 0 {
			out = append(out, TierCount{Label: b.Label, UnitPrice: b.UnitPrice, Count: n})
		}
	}
	return out
}
