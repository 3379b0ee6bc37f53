package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/turtacn/fulfill-billing/internal/application/billing"
	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

type stubVendorRepo struct {
	vendors map[string]*vendor.Vendor
	aliases []*vendor.Alias
}

func newStubVendorRepo() *stubVendorRepo {
	return &stubVendorRepo{vendors: map[string]*vendor.Vendor{}}
}

func (s *stubVendorRepo) Save(_ context.Context, v *vendor.Vendor) error {
	s.vendors[v.Name] = v
	return nil
}

func (s *stubVendorRepo) FindByName(_ context.Context, name string) (*vendor.Vendor, error) {
	v, ok := s.vendors[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeVendorNotFound, "vendor not found").WithDetail(name)
	}
	return v, nil
}

func (s *stubVendorRepo) List(_ context.Context) ([]*vendor.Vendor, error) {
	out := make([]*vendor.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		out = append(out, v)
	}
	return out, nil
}

func (s *stubVendorRepo) Delete(_ context.Context, name string) error {
	if _, ok := s.vendors[name]; !ok {
		return errors.New(errors.ErrCodeVendorNotFound, "vendor not found").WithDetail(name)
	}
	delete(s.vendors, name)
	return nil
}

func (s *stubVendorRepo) AddAlias(_ context.Context, a *vendor.Alias) error {
	s.aliases = append(s.aliases, a)
	return nil
}

func (s *stubVendorRepo) RemoveAlias(_ context.Context, alias, vendorName string, sourceType common.SourceType) error {
	for i, a := range s.aliases {
		if a.Alias == alias && a.Vendor == vendorName && a.SourceType == sourceType {
			s.aliases = append(s.aliases[:i], s.aliases[i+1:]...)
			return nil
		}
	}
	return errors.New(errors.ErrCodeNotFound, "alias not found")
}

func (s *stubVendorRepo) FindAliases(_ context.Context, vendorName string, sourceType common.SourceType) ([]string, error) {
	var out []string
	for _, a := range s.aliases {
		if a.Vendor == vendorName && (a.SourceType == sourceType || a.SourceType == common.SourceAll) {
			out = append(out, a.Alias)
		}
	}
	return out, nil
}

func (s *stubVendorRepo) FindOwner(_ context.Context, alias string, sourceType common.SourceType) (string, error) {
	for _, a := range s.aliases {
		if a.Alias == alias && a.SourceType == sourceType {
			return a.Vendor, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "alias not registered")
}

type stubRecords struct {
	tables map[common.SourceType][]billing.Record
}

func (s *stubRecords) Query(_ context.Context, spec billing.SourceSpec) ([]billing.Record, error) {
	rows, ok := s.tables[spec.Type]
	if !ok {
		return nil, errors.New(errors.ErrCodeSourceUnavailable, "table not found")
	}
	return rows, nil
}

type stubRates struct {
	flat map[string]int64
}

func (s *stubRates) LookupRate(_ context.Context, label string) (int64, error) {
	price, ok := s.flat[label]
	if !ok {
		return 0, errors.New(errors.ErrCodeRateNotConfigured, "rate not configured").WithDetail(label)
	}
	return price, nil
}

func (s *stubRates) LookupZoneTable(_ context.Context, _ common.RatePlan) (billing.ZoneTable, error) {
	return billing.ZoneTable{}, errors.New(errors.ErrCodeZoneTableEmpty, "zone table has no bands")
}

func (s *stubRates) LookupMaterialRates(_ context.Context) (billing.MaterialSchedule, error) {
	return billing.MaterialSchedule{}, errors.New(errors.ErrCodeRateNotConfigured, "no material rates configured")
}

type stubInvoices struct {
	saved []*billing.Invoice
}

func (s *stubInvoices) SaveFinal(_ context.Context, inv *billing.Invoice) error {
	s.saved = append(s.saved, inv)
	return nil
}

func (s *stubInvoices) FindByID(_ context.Context, id string) (*billing.Invoice, error) {
	for _, inv := range s.saved {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvoiceNotFound, "invoice not found").WithDetail(id)
}

func (s *stubInvoices) FindByPeriod(_ context.Context, _ string, _ common.DateRange) (*billing.Invoice, error) {
	return nil, errors.New(errors.ErrCodeInvoiceNotFound, "invoice not found")
}

func (s *stubInvoices) ListByVendor(_ context.Context, vendorName string) ([]*billing.Invoice, error) {
	var out []*billing.Invoice
	for _, inv := range s.saved {
		if inv.Vendor == vendorName {
			out = append(out, inv)
		}
	}
	return out, nil
}

func testDeps(t *testing.T) (Dependencies, *stubVendorRepo, *stubInvoices) {
	t.Helper()

	log := logging.NewNopLogger()
	repo := newStubVendorRepo()
	identity := vendor.NewIdentityService(repo, log)

	records := &stubRecords{tables: map[common.SourceType][]billing.Record{
		common.SourceInboundSlip: {
			{"공급처": "업피치", "작업일": "2025-06-02", "수량": "10"},
		},
	}}
	rates := &stubRates{flat: map[string]int64{"입고검수": 300}}
	invoices := &stubInvoices{}

	filter := appbilling.NewRecordFilter(identity, records, log)
	fees := appbilling.NewFeeService(repo, filter, rates, log)
	invoiceSvc := appbilling.NewInvoiceService(repo, fees, invoices, nil, nil, log)

	return Dependencies{
		VendorRepo: repo,
		Identity:   identity,
		Invoices:   invoiceSvc,
		Logger:     log,
	}, repo, invoices
}

func runCommand(t *testing.T, deps Dependencies, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand(deps)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVendorAddAndList(t *testing.T) {
	deps, repo, _ := testDeps(t)

	out, _, err := runCommand(t, deps, "vendor", "add", "업피치", "--barcode")
	require.NoError(t, err)
	assert.Contains(t, out, "업피치")

	require.Contains(t, repo.vendors, "업피치")
	assert.True(t, repo.vendors["업피치"].Flags.Barcode)
	assert.Equal(t, common.RatePlanStandard, repo.vendors["업피치"].RatePlan)

	out, _, err = runCommand(t, deps, "vendor", "list", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "업피치")
}

func TestVendorAliasRoundTrip(t *testing.T) {
	deps, _, _ := testDeps(t)

	_, _, err := runCommand(t, deps, "vendor", "add", "업피치")
	require.NoError(t, err)

	_, _, err = runCommand(t, deps,
		"vendor", "alias", "add", "업피치", "업피치(강남)", "--source-type", "kpost_in")
	require.NoError(t, err)

	out, _, err := runCommand(t, deps,
		"vendor", "names", "업피치", "--source-type", "kpost_in")
	require.NoError(t, err)
	assert.Contains(t, out, "업피치(강남)")

	_, _, err = runCommand(t, deps,
		"vendor", "alias", "remove", "업피치", "업피치(강남)", "--source-type", "kpost_in")
	require.NoError(t, err)

	out, _, err = runCommand(t, deps,
		"vendor", "names", "업피치", "--source-type", "kpost_in")
	require.NoError(t, err)
	assert.NotContains(t, out, "업피치(강남)")
}

func TestInvoiceComputeDraft(t *testing.T) {
	deps, _, invoices := testDeps(t)

	_, _, err := runCommand(t, deps, "vendor", "add", "업피치")
	require.NoError(t, err)

	out, _, err := runCommand(t, deps,
		"invoice", "compute", "업피치", "--from", "2025-06-01", "--to", "2025-06-30")
	require.NoError(t, err)
	assert.Contains(t, out, "입고검수")
	assert.Contains(t, out, "3000")
	assert.Empty(t, invoices.saved)
}

func TestInvoiceComputeFinalize(t *testing.T) {
	deps, _, invoices := testDeps(t)

	_, _, err := runCommand(t, deps, "vendor", "add", "업피치")
	require.NoError(t, err)

	_, _, err = runCommand(t, deps,
		"invoice", "compute", "업피치", "--from", "2025-06-01", "--to", "2025-06-30", "--finalize")
	require.NoError(t, err)
	require.Len(t, invoices.saved, 1)
	assert.Equal(t, billing.InvoiceFinalized, invoices.saved[0].Status)

	out, _, err := runCommand(t, deps, "invoice", "history", "업피치")
	require.NoError(t, err)
	assert.Contains(t, out, invoices.saved[0].ID)
}

func TestInvoiceComputeBadPeriod(t *testing.T) {
	deps, _, _ := testDeps(t)

	_, _, err := runCommand(t, deps,
		"invoice", "compute", "업피치", "--from", "2025-07-01", "--to", "2025-06-01")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePeriodInvalid, errors.GetCode(err))
}

func TestInvoiceComputeUnknownVendor(t *testing.T) {
	deps, _, _ := testDeps(t)

	_, _, err := runCommand(t, deps,
		"invoice", "compute", "없는업체", "--from", "2025-06-01", "--to", "2025-06-30")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVendorNotFound, errors.GetCode(err))
}
