package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceTypeValid(t *testing.T) {
	for _, st := range AllSourceTypes() {
		assert.True(t, st.Valid(), string(st))
	}
	assert.True(t, SourceAll.Valid())
	assert.False(t, SourceType("spreadsheet").Valid())
	assert.False(t, SourceType("").Valid())
}

func TestRatePlanOrDefault(t *testing.T) {
	assert.Equal(t, RatePlanStandard, RatePlan("").OrDefault())
	assert.Equal(t, RatePlan("PREMIUM"), RatePlan("PREMIUM").OrDefault())
}

func TestNewDateRange(t *testing.T) {
	from := time.Date(2025, 6, 1, 13, 45, 0, 0, time.Local)
	to := time.Date(2025, 6, 30, 2, 0, 0, 0, time.Local)

	r, err := NewDateRange(from, to)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), r.To)

	_, err = NewDateRange(to, from)
	assert.Error(t, err)
}

func TestDateRangeContains(t *testing.T) {
	r, err := NewDateRange(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	// Bounds are inclusive, and time-of-day must not matter.
	assert.True(t, r.Contains(time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2025, 6, 30, 0, 0, 1, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)))

	assert.False(t, r.Contains(time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDateRangeString(t *testing.T) {
	r, err := NewDateRange(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01..2025-06-30", r.String())
}
