package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/testutil"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

func newFilter(resolver *fakeResolver, records *fakeRecords) *RecordFilter {
	if resolver == nil {
		resolver = &fakeResolver{}
	}
	return NewRecordFilter(resolver, records, nil)
}

func TestLoadExactMatchWithAliases(t *testing.T) {
	resolver := &fakeResolver{names: map[common.SourceType][]string{
		common.SourcePostalIntake: {"업피치(강남)"},
	}}
	records := &fakeRecords{tables: map[common.SourceType][]billing.Record{
		common.SourcePostalIntake: {
			{"발송인명": "업피치", "접수일자": "2025-06-03"},
			{"발송인명": " 업피치(강남) ", "접수일자": "2025-06-10"}, // padded alias cell
			{"발송인명": "다른업체", "접수일자": "2025-06-05"},
		},
	}}

	got, err := newFilter(resolver, records).Load(context.Background(), "업피치",
		common.SourcePostalIntake, mustPeriod("2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "업피치", got[0].Value("발송인명"))
	assert.Equal(t, "업피치(강남)", got[1].Value("발송인명"))
}

func TestLoadSubstringMatchForShippingStats(t *testing.T) {
	records := &fakeRecords{tables: map[common.SourceType][]billing.Record{
		common.SourceShippingStats: {
			{"공급처": "(주)업피치 강남점", "배송일": "2025-06-02", "내품수량": "3"},
			{"공급처": "무관한 업체", "배송일": "2025-06-02", "내품수량": "1"},
		},
	}}

	got, err := newFilter(nil, records).Load(context.Background(), "업피치",
		common.SourceShippingStats, mustPeriod("2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "(주)업피치 강남점", got[0].Value("공급처"))
}

func TestLoadDateColumnFallback(t *testing.T) {
	// No row carries 배송일; the registration date is the documented
	// substitute.
	records := &fakeRecords{tables: map[common.SourceType][]billing.Record{
		common.SourceShippingStats: {
			{"공급처": "업피치", "송장등록일": "2025-06-15", "내품수량": "2"},
			{"공급처": "업피치", "송장등록일": "2025-07-01", "내품수량": "2"},
		},
	}}

	got, err := newFilter(nil, records).Load(context.Background(), "업피치",
		common.SourceShippingStats, mustPeriod("2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-06-15", got[0].Value("송장등록일"))
}

func TestLoadPeriodBoundsInclusive(t *testing.T) {
	records := &fakeRecords{tables: map[common.SourceType][]billing.Record{
		common.SourcePostalIntake: {
			{"발송인명": "업피치", "접수일자": "2025-05-31"},
			{"발송인명": "업피치", "접수일자": "2025-06-01"},
			{"발송인명": "업피치", "접수일자": "2025-06-30 23:10"},
			{"발송인명": "업피치", "접수일자": "2025-07-01"},
		},
	}}

	got, err := newFilter(nil, records).Load(context.Background(), "업피치",
		common.SourcePostalIntake, mustPeriod("2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLoadExcludesUnparsableDates(t *testing.T) {
	records := &fakeRecords{tables: map[common.SourceType][]billing.Record{
		common.SourcePostalIntake: {
			{"발송인명": "업피치", "접수일자": "미정"},
			{"발송인명": "업피치", "접수일자": "2025.06.11"},
		},
	}}

	got, err := newFilter(nil, records).Load(context.Background(), "업피치",
		common.SourcePostalIntake, mustPeriod("2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLoadMissingTableIsEmpty(t *testing.T) {
	records := &fakeRecords{tables: map[common.SourceType][]billing.Record{}}

	got, err := newFilter(nil, records).Load(context.Background(), "업피치",
		common.SourcePostalIntake, mustPeriod("2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadNoDateColumnIsEmpty(t *testing.T) {
	records := &fakeRecords{tables: map[common.SourceType][]billing.Record{
		common.SourcePostalIntake: {
			{"발송인명": "업피치", "부피": "80"},
		},
	}}
	log := testutil.NewMockLogger()

	got, err := NewRecordFilter(&fakeResolver{}, records, log).Load(context.Background(), "업피치",
		common.SourcePostalIntake, mustPeriod("2025-06-01", "2025-06-30"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, log.HasMessage("warn", "no date column in source rows, treating as empty"))
}
