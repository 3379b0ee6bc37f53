package billing

import (
	"context"
	"time"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// In-memory fakes shared by the tests in this package.

type fakeResolver struct {
	names map[common.SourceType][]string
}

func (f *fakeResolver) ResolveNames(_ context.Context, vendorName string, sourceType common.SourceType) ([]string, error) {
	if extra, ok := f.names[sourceType]; ok {
		return append([]string{vendorName}, extra...), nil
	}
	return []string{vendorName}, nil
}

type fakeRecords struct {
	tables map[common.SourceType][]billing.Record
	err    error
}

func (f *fakeRecords) Query(_ context.Context, spec billing.SourceSpec) ([]billing.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows, ok := f.tables[spec.Type]
	if !ok {
		return nil, errors.New(errors.ErrCodeSourceUnavailable, "table not found").
			WithDetail(spec.Table)
	}
	return rows, nil
}

type fakeRates struct {
	flat      map[string]int64
	zones     map[common.RatePlan]billing.ZoneTable
	materials billing.MaterialSchedule
}

func (f *fakeRates) LookupRate(_ context.Context, label string) (int64, error) {
	price, ok := f.flat[label]
	if !ok {
		return 0, errors.New(errors.ErrCodeRateNotConfigured, "rate not configured").
			WithDetail(label)
	}
	return price, nil
}

func (f *fakeRates) LookupZoneTable(_ context.Context, plan common.RatePlan) (billing.ZoneTable, error) {
	table, ok := f.zones[plan]
	if !ok {
		return billing.ZoneTable{}, errors.New(errors.ErrCodeZoneTableEmpty, "zone table has no bands").
			WithDetail(string(plan))
	}
	return table, nil
}

func (f *fakeRates) LookupMaterialRates(_ context.Context) (billing.MaterialSchedule, error) {
	if len(f.materials.Rates) == 0 {
		return billing.MaterialSchedule{}, errors.New(errors.ErrCodeRateNotConfigured, "no material rates configured")
	}
	return f.materials, nil
}

type fakeVendors struct {
	byName map[string]*vendor.Vendor
}

func (f *fakeVendors) FindByName(_ context.Context, name string) (*vendor.Vendor, error) {
	v, ok := f.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeVendorNotFound, "vendor not found").WithDetail(name)
	}
	return v, nil
}

type fakeInvoices struct {
	saved []*billing.Invoice
}

func (f *fakeInvoices) SaveFinal(_ context.Context, inv *billing.Invoice) error {
	kept := f.saved[:0]
	for _, old := range f.saved {
		if old.Vendor != inv.Vendor || old.Period != inv.Period {
			kept = append(kept, old)
		}
	}
	f.saved = append(kept, inv)
	return nil
}

func (f *fakeInvoices) FindByID(_ context.Context, id string) (*billing.Invoice, error) {
	for _, inv := range f.saved {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvoiceNotFound, "invoice not found").WithDetail(id)
}

func (f *fakeInvoices) FindByPeriod(_ context.Context, vendorName string, period common.DateRange) (*billing.Invoice, error) {
	for _, inv := range f.saved {
		if inv.Vendor == vendorName && inv.Period == period {
			return inv, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvoiceNotFound, "invoice not found")
}

func (f *fakeInvoices) ListByVendor(_ context.Context, vendorName string) ([]*billing.Invoice, error) {
	var out []*billing.Invoice
	for _, inv := range f.saved {
		if inv.Vendor == vendorName {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeEvents struct {
	published []*billing.Invoice
	err       error
}

func (f *fakeEvents) PublishInvoiceFinalized(_ context.Context, inv *billing.Invoice) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, inv)
	return nil
}

func mustPeriod(from, to string) common.DateRange {
	f, _ := time.Parse("2006-01-02", from)
	t, _ := time.Parse("2006-01-02", to)
	r, err := common.NewDateRange(f, t)
	if err != nil {
		panic(err)
	}
	return r
}

func f64(v float64) *float64 { return &v }

// stdZoneTable mirrors the production STD courier schedule.
func stdZoneTable() billing.ZoneTable {
	zt, err := billing.NewZoneTable(common.RatePlanStandard, []billing.ZoneBand{
		{Label: "극소", MinCM: 0, MaxCM: f64(50), UnitPrice: 2100},
		{Label: "소", MinCM: 51, MaxCM: f64(70), UnitPrice: 2900},
		{Label: "중", MinCM: 71, MaxCM: f64(100), UnitPrice: 4400},
		{Label: "대", MinCM: 101, MaxCM: f64(120), UnitPrice: 6200},
		{Label: "특대", MinCM: 121, MaxCM: f64(140), UnitPrice: 8300},
		{Label: "특특대", MinCM: 141, MaxCM: f64(160), UnitPrice: 10400},
	})
	if err != nil {
		panic(err)
	}
	return zt
}

func allMaterialRates() billing.MaterialSchedule {
	return billing.MaterialSchedule{Rates: []billing.MaterialRate{
		{SizeCode: "극소", Label: "박스 극소", UnitPrice: 80},
		{SizeCode: "극소", Label: "택배 봉투 소형", UnitPrice: 60},
		{SizeCode: "소", Label: "박스 소", UnitPrice: 120},
		{SizeCode: "소", Label: "택배 봉투 소형", UnitPrice: 60},
		{SizeCode: "중", Label: "박스 중", UnitPrice: 200},
		{SizeCode: "중", Label: "택배 봉투 대형", UnitPrice: 90},
		{SizeCode: "특특대", Label: "박스 특특대", UnitPrice: 500},
	}}
}

func allFlatRates() map[string]int64 {
	return map[string]int64{
		billing.RateInboundInspection: 300,
		billing.RateRemoteArea:        3000,
		billing.RateBasicShipping:     800,
		billing.RateReturnPickup:      1500,
		billing.RateReturnVideo:       500,
		billing.RateOutboundVideo:     500,
		billing.RateVoidFill:          200,
		billing.RateBarcode:           100,
		billing.RateCombinedPack:      700,
		billing.RatePolyBagMedium:     150,
	}
}
