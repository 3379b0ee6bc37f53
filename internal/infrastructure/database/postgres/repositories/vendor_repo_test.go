package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

type VendorRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo vendor.Repository
}

func (s *VendorRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.NoError(err)

	log := logging.NewNopLogger()
	s.repo = NewPostgresVendorRepo(postgres.NewConnectionWithDB(s.db, log), log)
}

func (s *VendorRepoTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *VendorRepoTestSuite) TestFindByName_Found() {
	now := time.Now()
	s.mock.ExpectQuery(`SELECT name, rate_plan, .* FROM vendors WHERE name = \$1`).
		WithArgs("업피치").
		WillReturnRows(sqlmock.NewRows([]string{
			"name", "rate_plan", "size_bucket", "flags", "created_at", "updated_at",
		}).AddRow("업피치", "STD", "", []byte(`{"barcode":true}`), now, now))

	v, err := s.repo.FindByName(context.Background(), "업피치")
	s.NoError(err)
	s.Equal("업피치", v.Name)
	s.Equal(common.RatePlanStandard, v.RatePlan)
	s.True(v.Flags.Barcode)
}

func (s *VendorRepoTestSuite) TestFindByName_NotFound() {
	s.mock.ExpectQuery(`SELECT name, rate_plan, .* FROM vendors WHERE name = \$1`).
		WithArgs("없는업체").
		WillReturnRows(sqlmock.NewRows([]string{
			"name", "rate_plan", "size_bucket", "flags", "created_at", "updated_at",
		}))

	_, err := s.repo.FindByName(context.Background(), "없는업체")
	s.True(errors.IsCode(err, errors.ErrCodeVendorNotFound))
}

func (s *VendorRepoTestSuite) TestDelete_NotFound() {
	s.mock.ExpectExec(`DELETE FROM vendors WHERE name = \$1`).
		WithArgs("없는업체").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.repo.Delete(context.Background(), "없는업체")
	s.True(errors.IsCode(err, errors.ErrCodeVendorNotFound))
}

func (s *VendorRepoTestSuite) TestFindAliases_IncludesAllScope() {
	s.mock.ExpectQuery(`SELECT alias FROM vendor_aliases`).
		WithArgs("업피치", "work_log").
		WillReturnRows(sqlmock.NewRows([]string{"alias"}).
			AddRow("업피치(강남)").
			AddRow("UPPITCH"))

	got, err := s.repo.FindAliases(context.Background(), "업피치", common.SourceWorkLog)
	s.NoError(err)
	s.Equal([]string{"업피치(강남)", "UPPITCH"}, got)
}

func (s *VendorRepoTestSuite) TestFindOwner_NotRegistered() {
	s.mock.ExpectQuery(`SELECT vendor_name FROM vendor_aliases`).
		WithArgs("업피치(강남)", "kpost_in").
		WillReturnRows(sqlmock.NewRows([]string{"vendor_name"}))

	_, err := s.repo.FindOwner(context.Background(), "업피치(강남)", common.SourcePostalIntake)
	s.True(errors.IsNotFound(err))
}

func TestVendorRepoTestSuite(t *testing.T) {
	suite.Run(t, new(VendorRepoTestSuite))
}
