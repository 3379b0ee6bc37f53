package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

type postgresVendorRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresVendorRepo constructs the vendor repository.
func NewPostgresVendorRepo(conn *postgres.Connection, log logging.Logger) vendor.Repository {
	return &postgresVendorRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

func (r *postgresVendorRepo) Save(ctx context.Context, v *vendor.Vendor) error {
	query := `
		INSERT INTO vendors (name, rate_plan, size_bucket, flags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			rate_plan = EXCLUDED.rate_plan,
			size_bucket = EXCLUDED.size_bucket,
			flags = EXCLUDED.flags,
			updated_at = NOW()
	`
	flagsJSON, _ := json.Marshal(v.Flags)

	_, err := r.executor.ExecContext(ctx, query,
		v.Name, string(v.RatePlan), v.SizeBucket, flagsJSON, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save vendor")
	}
	return nil
}

func (r *postgresVendorRepo) FindByName(ctx context.Context, name string) (*vendor.Vendor, error) {
	query := `
		SELECT name, rate_plan, size_bucket, flags, created_at, updated_at
		FROM vendors WHERE name = $1
	`
	v, err := scanVendor(r.executor.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeVendorNotFound, "vendor not found").WithDetail(name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load vendor")
	}
	return v, nil
}

func (r *postgresVendorRepo) List(ctx context.Context) ([]*vendor.Vendor, error) {
	query := `
		SELECT name, rate_plan, size_bucket, flags, created_at, updated_at
		FROM vendors ORDER BY name
	`
	rows, err := r.executor.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list vendors")
	}
	defer rows.Close()

	var out []*vendor.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan vendor")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate vendors")
	}
	return out, nil
}

func (r *postgresVendorRepo) Delete(ctx context.Context, name string) error {
	// vendor_aliases declares ON DELETE CASCADE on the vendor reference.
	res, err := r.executor.ExecContext(ctx, `DELETE FROM vendors WHERE name = $1`, name)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete vendor")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeVendorNotFound, "vendor not found").WithDetail(name)
	}
	return nil
}

func (r *postgresVendorRepo) AddAlias(ctx context.Context, a *vendor.Alias) error {
	query := `
		INSERT INTO vendor_aliases (alias, vendor_name, source_type, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.executor.ExecContext(ctx, query, a.Alias, a.Vendor, string(a.SourceType), a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			owner, ferr := r.FindOwner(ctx, a.Alias, a.SourceType)
			if ferr == nil && owner != a.Vendor {
				return errors.Wrap(err, errors.ErrCodeAliasAmbiguous, "alias already owned by another vendor").
					WithDetail("alias=" + a.Alias + " owner=" + owner)
			}
			return errors.Wrap(err, errors.ErrCodeAliasExists, "alias already registered").
				WithDetail("alias=" + a.Alias)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to add alias")
	}
	return nil
}

func (r *postgresVendorRepo) RemoveAlias(ctx context.Context, alias, vendorName string, sourceType common.SourceType) error {
	query := `
		DELETE FROM vendor_aliases
		WHERE alias = $1 AND vendor_name = $2 AND source_type = $3
	`
	res, err := r.executor.ExecContext(ctx, query, alias, vendorName, string(sourceType))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to remove alias")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeNotFound, "alias not found").WithDetail(alias)
	}
	return nil
}

func (r *postgresVendorRepo) FindAliases(ctx context.Context, vendorName string, sourceType common.SourceType) ([]string, error) {
	// Aliases registered under 'all' apply to every concrete source type.
	query := `
		SELECT alias FROM vendor_aliases
		WHERE vendor_name = $1 AND source_type IN ($2, 'all')
		ORDER BY id
	`
	rows, err := r.executor.QueryContext(ctx, query, vendorName, string(sourceType))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load aliases")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan alias")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate aliases")
	}
	return out, nil
}

func (r *postgresVendorRepo) FindOwner(ctx context.Context, alias string, sourceType common.SourceType) (string, error) {
	query := `
		SELECT vendor_name FROM vendor_aliases
		WHERE alias = $1 AND source_type = $2
	`
	var owner string
	err := r.executor.QueryRowContext(ctx, query, alias, string(sourceType)).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", errors.New(errors.ErrCodeNotFound, "alias not registered").WithDetail(alias)
	}
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to look up alias owner")
	}
	return owner, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVendor(row rowScanner) (*vendor.Vendor, error) {
	var (
		v         vendor.Vendor
		plan      string
		flagsJSON []byte
	)
	if err := row.Scan(&v.Name, &plan, &v.SizeBucket, &flagsJSON, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.RatePlan = common.RatePlan(plan)
	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &v.Flags); err != nil {
			return nil, err
		}
	}
	return &v, nil
}
