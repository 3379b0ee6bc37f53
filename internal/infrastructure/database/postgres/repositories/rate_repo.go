package repositories

import (
	"context"
	"database/sql"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

type postgresRateRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresRateRepo constructs the rate-table repository.
func NewPostgresRateRepo(conn *postgres.Connection, log logging.Logger) billing.RateRepository {
	return &postgresRateRepo{conn: conn, log: log}
}

func (r *postgresRateRepo) LookupRate(ctx context.Context, label string) (int64, error) {
	var price int64
	err := r.conn.DB().QueryRowContext(ctx,
		`SELECT unit_price FROM flat_rates WHERE label = $1`, label).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, errors.New(errors.ErrCodeRateNotConfigured, "rate not configured").WithDetail(label)
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to look up flat rate")
	}
	return price, nil
}

func (r *postgresRateRepo) LookupZoneTable(ctx context.Context, plan common.RatePlan) (billing.ZoneTable, error) {
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT label, min_cm, max_cm, unit_price
		FROM zone_rates WHERE plan = $1
		ORDER BY min_cm
	`, string(plan))
	if err != nil {
		return billing.ZoneTable{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load zone table")
	}
	defer rows.Close()

	var bands []billing.ZoneBand
	for rows.Next() {
		var (
			b     billing.ZoneBand
			maxCM sql.NullFloat64
		)
		if err := rows.Scan(&b.Label, &b.MinCM, &maxCM, &b.UnitPrice); err != nil {
			return billing.ZoneTable{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan zone band")
		}
		if maxCM.Valid {
			v := maxCM.Float64
			b.MaxCM = &v
		}
		bands = append(bands, b)
	}
	if err := rows.Err(); err != nil {
		return billing.ZoneTable{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate zone bands")
	}

	return billing.NewZoneTable(plan, bands)
}

func (r *postgresRateRepo) LookupMaterialRates(ctx context.Context) (billing.MaterialSchedule, error) {
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT size_code, label, unit_price
		FROM material_rates
		ORDER BY size_code, label
	`)
	if err != nil {
		return billing.MaterialSchedule{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load material rates")
	}
	defer rows.Close()

	var rates []billing.MaterialRate
	for rows.Next() {
		var m billing.MaterialRate
		if err := rows.Scan(&m.SizeCode, &m.Label, &m.UnitPrice); err != nil {
			return billing.MaterialSchedule{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan material rate")
		}
		rates = append(rates, m)
	}
	if err := rows.Err(); err != nil {
		return billing.MaterialSchedule{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate material rates")
	}
	if len(rates) == 0 {
		return billing.MaterialSchedule{}, errors.New(errors.ErrCodeRateNotConfigured, "no material rates configured")
	}
	return billing.MaterialSchedule{Rates: rates}, nil
}
