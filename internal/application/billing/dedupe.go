package billing

import (
	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
)

// Dedupe removes duplicate shipments from a record set, keyed on the first
// tracking-identifier column present in the set (등기번호 outranks 송장번호,
// and so on down the priority list).  Keys are canonicalised before
// comparison so that "6069-1234-5678" and its spreadsheet-mangled spellings
// collide.  The first occurrence of each key is kept in stored order.
//
// Rows whose key cell is empty or absent are kept unconditionally: postal
// manifests mix subsystems, and a row carrying only a secondary identifier
// must not vanish because the primary column won the priority vote.  Running
// Dedupe on its own output returns it unchanged.
func Dedupe(records []billing.Record, log logging.Logger) []billing.Record {
	if len(records) == 0 {
		return records
	}
	keyCol, ok := billing.FirstColumn(records, billing.TrackingColumns...)
	if !ok {
		return records
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]billing.Record, 0, len(records))
	for _, r := range records {
		key := billing.NormalizeTrackingID(r.Value(keyCol))
		if key == "" {
			out = append(out, r)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	if log != nil && len(out) < len(records) {
		log.Debug("duplicate shipments dropped",
			logging.String("key_column", keyCol),
			logging.Int("in", len(records)),
			logging.Int("out", len(out)))
	}
	return out
}
