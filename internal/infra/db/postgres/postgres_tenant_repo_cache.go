package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
	"driving-school-platform/internal/infra/metrics"
	red "driving-school-platform/internal/infra/redis"
)

var _ repository.TenantRepository = (*tenantRepoCacheDecorator)(nil)

// tenantRepoCacheDecorator caches tenant reads in Redis. Transactional
// reads bypass the cache: inside a workflow transaction the row may be
// mid-mutation and the cache must not serve a stale snapshot under the
// tenant lock.
type tenantRepoCacheDecorator struct {
	inner repository.TenantRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewTenantRepoCacheDecorator(inner repository.TenantRepository, cache red.RedisClient, ttl time.Duration) repository.TenantRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tenantRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func tenantIDKey(id string) string       { return fmt.Sprintf("tenant:id:%s", id) }
func tenantOwnerKey(owner string) string { return fmt.Sprintf("tenant:owner:%s", owner) }

func (d *tenantRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, t *model.Tenant) error {
	_ = d.cache.Del(ctx, tenantIDKey(t.ID), tenantOwnerKey(t.OwnerID))
	return d.inner.Save(ctx, tx, t)
}

func (d *tenantRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tenant, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := tenantIDKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("tenant", "hit")
		var t model.Tenant
		if json.Unmarshal([]byte(val), &t) == nil {
			return &t, nil
		}
	} else if err != redis.Nil {
		metrics.IncCacheRequest("tenant", "error")
	}

	metrics.IncCacheRequest("tenant", "miss")
	t, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, t)
	return t, nil
}

func (d *tenantRepoCacheDecorator) FindByOwner(ctx context.Context, tx repository.Tx, ownerID string) (*model.Tenant, error) {
	if tx != nil {
		return d.inner.FindByOwner(ctx, tx, ownerID)
	}
	if val, err := d.cache.Get(ctx, tenantOwnerKey(ownerID)); err == nil {
		metrics.IncCacheRequest("tenant", "hit")
		var t model.Tenant
		if json.Unmarshal([]byte(val), &t) == nil {
			return &t, nil
		}
	}

	metrics.IncCacheRequest("tenant", "miss")
	t, err := d.inner.FindByOwner(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	d.store(ctx, t)
	return t, nil
}

// store warms both keys so a FindByOwner also serves later FindByID calls.
func (d *tenantRepoCacheDecorator) store(ctx context.Context, t *model.Tenant) {
	bytes, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = d.cache.Set(ctx, tenantIDKey(t.ID), bytes, d.ttl)
	_ = d.cache.Set(ctx, tenantOwnerKey(t.OwnerID), bytes, d.ttl)
}

func (d *tenantRepoCacheDecorator) ListIDs(ctx context.Context, tx repository.Tx) ([]string, error) {
	return d.inner.ListIDs(ctx, tx)
}

func (d *tenantRepoCacheDecorator) CountByPlan(ctx context.Context, tx repository.Tx) (map[model.Plan]int, error) {
	return d.inner.CountByPlan(ctx, tx)
}
