// Package billing models the raw operational records, rate tables, and
// invoice artifacts that fee resolution operates on.  The raw logs arrive
// with inconsistent schemas per upload batch, so records are column-keyed
// string maps rather than fixed structs; typed access goes through the
// coercion helpers in coerce.go.
package billing

import "strings"

// Record is one row of a raw source log.  Keys are trimmed column names as
// stored; values are raw cell text.  Records are read-only to this core.
type Record map[string]string

// Has reports whether the record carries the column, even with an empty value.
func (r Record) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// Value returns the cell text for col with surrounding whitespace trimmed, or
// "" when the column is absent.
func (r Record) Value(col string) string {
	return strings.TrimSpace(r[col])
}

// FirstColumn returns the first of candidates that is present in any record
// of the set.  This is the schema-union rule: different postal subsystems
// export the same logical field under different column names, so a priority
// list is tried in sequence and the first hit wins for the whole set.
func FirstColumn(records []Record, candidates ...string) (string, bool) {
	for _, col := range candidates {
		for _, r := range records {
			if r.Has(col) {
				return col, true
			}
		}
	}
	return "", false
}
