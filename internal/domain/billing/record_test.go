package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

func TestRecordValueTrims(t *testing.T) {
	r := Record{"발송인명": "  업피치(강남) "}

	assert.Equal(t, "업피치(강남)", r.Value("발송인명"))
	assert.True(t, r.Has("발송인명"))
	assert.False(t, r.Has("부피"))
	assert.Equal(t, "", r.Value("부피"))
}

func TestFirstColumn(t *testing.T) {
	records := []Record{
		{"TrackingNo": "123"},
		{"등기번호": "456"},
	}

	// 등기번호 outranks TrackingNo even though a TrackingNo row comes first.
	col, ok := FirstColumn(records, TrackingColumns...)
	assert.True(t, ok)
	assert.Equal(t, "등기번호", col)
}

func TestFirstColumnNoneFound(t *testing.T) {
	records := []Record{{"부피": "10"}}

	_, ok := FirstColumn(records, TrackingColumns...)
	assert.False(t, ok)

	_, ok = FirstColumn(nil, TrackingColumns...)
	assert.False(t, ok)
}

func TestSpecFor(t *testing.T) {
	for _, st := range common.AllSourceTypes() {
		spec, ok := SpecFor(st)
		assert.True(t, ok, string(st))
		assert.Equal(t, string(st), spec.Table)
		assert.NotEmpty(t, spec.VendorColumn)
		assert.NotEmpty(t, spec.DateColumns)
	}

	_, ok := SpecFor(common.SourceAll)
	assert.False(t, ok)
}
