package repositories

import (
	"context"
	"database/sql"
	"strings"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
)

// allowedTables guards the identifier interpolation in Query: source tables
// come from the fixed SourceSpec registry, never from user input.
var allowedTables = map[string]struct{}{
	"inbound_slip":   {},
	"shipping_stats": {},
	"kpost_in":       {},
	"kpost_ret":      {},
	"work_log":       {},
}

type postgresRecordRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresRecordRepo constructs the raw source log repository.
func NewPostgresRecordRepo(conn *postgres.Connection, log logging.Logger) billing.RecordRepository {
	return &postgresRecordRepo{conn: conn, log: log}
}

// Query loads every row of the source's table as column-keyed records.  The
// raw log tables are created by the upload tooling with whatever columns the
// batch carried, so the column list is discovered per query and all values
// read as text.  A table that was never uploaded maps to
// ErrCodeSourceUnavailable.
func (r *postgresRecordRepo) Query(ctx context.Context, spec billing.SourceSpec) ([]billing.Record, error) {
	if _, ok := allowedTables[spec.Table]; !ok {
		return nil, errors.New(errors.ErrCodeSourceTypeInvalid, "unknown source table").
			WithDetail(spec.Table)
	}

	rows, err := r.conn.DB().QueryContext(ctx, `SELECT * FROM `+spec.Table)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, errors.Wrap(err, errors.ErrCodeSourceUnavailable, "source table does not exist").
				WithDetail(spec.Table)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query source table").
			WithDetail(spec.Table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read source columns")
	}
	// Upload batches sometimes carry padded header cells.
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	var out []billing.Record
	values := make([]sql.NullString, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan source row")
		}
		rec := make(billing.Record, len(cols))
		for i, col := range cols {
			if values[i].Valid {
				rec[col] = values[i].String
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate source rows")
	}

	r.log.Debug("source table loaded",
		logging.String("table", spec.Table),
		logging.Int("rows", len(out)))
	return out, nil
}
