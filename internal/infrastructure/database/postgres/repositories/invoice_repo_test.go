package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

type InvoiceRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo billing.InvoiceRepository
}

func (s *InvoiceRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.NoError(err)

	log := logging.NewNopLogger()
	s.repo = NewPostgresInvoiceRepo(postgres.NewConnectionWithDB(s.db, log), log)
}

func (s *InvoiceRepoTestSuite) TearDownTest() {
	s.db.Close()
}

func testInvoice() *billing.Invoice {
	period, _ := common.NewDateRange(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	now := time.Now().UTC()
	return &billing.Invoice{
		ID:     "inv-1",
		Vendor: "업피치",
		Period: period,
		Status: billing.InvoiceFinalized,
		Items: []billing.LineItem{
			{Label: "입고검수", Qty: 120, UnitPrice: 300, Amount: 36000},
		},
		TotalAmount: 36000,
		Currency:    "KRW",
		CreatedAt:   now,
		FinalizedAt: &now,
	}
}

func (s *InvoiceRepoTestSuite) TestSaveFinal_DeleteThenInsert() {
	inv := testInvoice()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM invoices`).
		WithArgs(inv.Vendor, inv.Period.From, inv.Period.To).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`INSERT INTO invoices`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(`INSERT INTO invoice_items`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.SaveFinal(context.Background(), inv))
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *InvoiceRepoTestSuite) TestSaveFinal_RollsBackOnItemFailure() {
	inv := testInvoice()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`DELETE FROM invoices`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec(`INSERT INTO invoices`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(`INSERT INTO invoice_items`).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := s.repo.SaveFinal(context.Background(), inv)
	s.True(errors.IsCode(err, errors.ErrCodeDatabaseError))
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *InvoiceRepoTestSuite) TestFindByID_NotFound() {
	s.mock.ExpectQuery(`SELECT id, vendor_name, .* FROM invoices WHERE id = \$1`).
		WithArgs("absent").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "vendor_name", "period_from", "period_to", "status",
			"total_amount", "currency", "created_at", "finalized_at",
		}))

	_, err := s.repo.FindByID(context.Background(), "absent")
	s.True(errors.IsCode(err, errors.ErrCodeInvoiceNotFound))
}

func TestInvoiceRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceRepoTestSuite))
}
