package redis

import (
	"context"
	"time"

	"github.com/turtacn/fulfill-billing/internal/domain/billing"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// cachedRateRepo decorates a RateRepository with read-through caching.
// Negative results are not cached: a missing rate is expected to be fixed by
// the operator and re-queried immediately.
type cachedRateRepo struct {
	next  billing.RateRepository
	cache Cache
	ttl   time.Duration
}

// NewCachedRateRepo wraps next with a read-through rate cache.
func NewCachedRateRepo(next billing.RateRepository, cache Cache, ttl time.Duration) billing.RateRepository {
	return &cachedRateRepo{next: next, cache: cache, ttl: ttl}
}

func (r *cachedRateRepo) LookupRate(ctx context.Context, label string) (int64, error) {
	var price int64
	err := r.cache.GetOrSet(ctx, "rate:flat:"+label, &price, r.ttl,
		func(ctx context.Context) (interface{}, error) {
			return r.next.LookupRate(ctx, label)
		})
	if err != nil {
		return 0, err
	}
	return price, nil
}

func (r *cachedRateRepo) LookupZoneTable(ctx context.Context, plan common.RatePlan) (billing.ZoneTable, error) {
	var table billing.ZoneTable
	err := r.cache.GetOrSet(ctx, "rate:zone:"+string(plan), &table, r.ttl,
		func(ctx context.Context) (interface{}, error) {
			return r.next.LookupZoneTable(ctx, plan)
		})
	if err != nil {
		return billing.ZoneTable{}, err
	}
	return table, nil
}

func (r *cachedRateRepo) LookupMaterialRates(ctx context.Context) (billing.MaterialSchedule, error) {
	var schedule billing.MaterialSchedule
	err := r.cache.GetOrSet(ctx, "rate:material", &schedule, r.ttl,
		func(ctx context.Context) (interface{}, error) {
			return r.next.LookupMaterialRates(ctx)
		})
	if err != nil {
		return billing.MaterialSchedule{}, err
	}
	return schedule, nil
}
