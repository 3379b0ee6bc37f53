package billing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Raw log cells are hand-entered or spreadsheet-exported, so every numeric or
// date read goes through a coerce-or-default helper with a documented default
// per field.  Malformed values never raise; they coerce.

var (
	nonAlnumRE   = regexp.MustCompile(`[^0-9A-Za-z]`)
	dateDelimRE  = regexp.MustCompile(`[./]`)
	trackingPadTo = 10
)

// VolumeOrZero parses a volume reading in cm.  Missing or non-numeric text
// coerces to 0, which lands the row in the smallest zone tier rather than
// dropping it.
func VolumeOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// QtyOrZero parses a piece count.  Malformed or negative values coerce to 0.
// Fractional counts truncate toward zero.
func QtyOrZero(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0
		}
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int64(f)
	}
	return 0
}

// dayLayouts are tried in order when parsing a normalised date cell.
var dayLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"20060102",
}

// ParseDay parses a raw date cell at day granularity.  Delimiters "/" and "."
// are normalised to "-", and trailing time-of-day text ("2025-06-01 13:45")
// is cut at the tenth character.  Returns false for unparsable text; callers
// exclude such rows from date-filtered sets.
func ParseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = dateDelimRE.ReplaceAllString(s, "-")
	if len(s) > 10 {
		s = s[:10]
	}
	s = strings.TrimSpace(s)
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// scientificToInt collapses scientific-notation or decimal spellings of an
// integer ("1.23457e+12", "6069…0.0") back to a plain integer string.
// Spreadsheet round-trips routinely mangle tracking numbers this way.
func scientificToInt(s string) string {
	if !strings.ContainsAny(s, "eE.") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

// NormalizeTrackingID canonicalises a shipment identifier: scientific or
// decimal spellings collapse to integers, everything but digits and ASCII
// letters is stripped, and short results are left-padded with zeros to ten
// characters.  An empty result means the record has no usable identifier.
func NormalizeTrackingID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = scientificToInt(s)
	s = nonAlnumRE.ReplaceAllString(s, "")
	if s == "" {
		return ""
	}
	if len(s) < trackingPadTo {
		s = strings.Repeat("0", trackingPadTo-len(s)) + s
	}
	return s
}
