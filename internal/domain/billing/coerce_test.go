package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVolumeOrZero(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"102", 102},
		{" 51.5 ", 51.5},
		{"1,234", 1234},
		{"", 0},
		{"측정불가", 0},
		{"-3", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, VolumeOrZero(tc.in), "input %q", tc.in)
	}
}

func TestQtyOrZero(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"3", 3},
		{" 12 ", 12},
		{"2,500", 2500},
		{"4.0", 4},
		{"", 0},
		{"abc", 0},
		{"-1", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, QtyOrZero(tc.in), "input %q", tc.in)
	}
}

func TestParseDay(t *testing.T) {
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []string{
		"2025-06-01",
		"2025/06/01",
		"2025.06.01",
		"2025-06-01 13:45",
		"2025-06-01T09:00:00",
		"2025-6-1",
		"20250601",
	}
	for _, in := range cases {
		got, ok := ParseDay(in)
		assert.True(t, ok, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestParseDayUnparsable(t *testing.T) {
	for _, in := range []string{"", "미정", "2025-13-99", "someday"} {
		_, ok := ParseDay(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestNormalizeTrackingID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"6069123456789", "6069123456789"},
		{"6069-1234-5678", "606912345678"},
		{" RR123456785KR ", "RR123456785KR"},
		{"1234567.0", "0001234567"},
		{"1.23456789012e+12", "1234567890120"},
		{"42", "0000000042"},
		{"", ""},
		{"---", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeTrackingID(tc.in), "input %q", tc.in)
	}
}
