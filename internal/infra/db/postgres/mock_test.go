//go:build !integration

package postgres

import (
	"context"
	"time"

	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
	red "driving-school-platform/internal/infra/redis"
)

// --- Mocks for cache decorator tests ---

// mockInnerTenantRepo mocks the database repository the decorator wraps.
type mockInnerTenantRepo struct {
	SaveFunc        func(ctx context.Context, tx repository.Tx, t *model.Tenant) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*model.Tenant, error)
	FindByOwnerFunc func(ctx context.Context, tx repository.Tx, ownerID string) (*model.Tenant, error)
	ListIDsFunc     func(ctx context.Context, tx repository.Tx) ([]string, error)
	CountByPlanFunc func(ctx context.Context, tx repository.Tx) (map[model.Plan]int, error)
}

var _ repository.TenantRepository = (*mockInnerTenantRepo)(nil)

func (m *mockInnerTenantRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tenant) error {
	return m.SaveFunc(ctx, tx, t)
}
func (m *mockInnerTenantRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tenant, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerTenantRepo) FindByOwner(ctx context.Context, tx repository.Tx, ownerID string) (*model.Tenant, error) {
	return m.FindByOwnerFunc(ctx, tx, ownerID)
}
func (m *mockInnerTenantRepo) ListIDs(ctx context.Context, tx repository.Tx) ([]string, error) {
	return m.ListIDsFunc(ctx, tx)
}
func (m *mockInnerTenantRepo) CountByPlan(ctx context.Context, tx repository.Tx) (map[model.Plan]int, error) {
	return m.CountByPlanFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc   func(ctx context.Context, key string) (string, error)
	SetFunc   func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc   func(ctx context.Context, keys ...string) error
	PingFunc  func(ctx context.Context) error
	CloseFunc func() error
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Close() error                   { return m.CloseFunc() }
