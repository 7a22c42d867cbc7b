//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain"
	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/adapter"
	"driving-school-platform/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Transaction manager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately with NoTX unless a test installs
// its own WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Tenant locker ----

type MockLocker struct {
	mu     sync.Mutex
	Locked []string
	ErrOn  map[string]error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{ErrOn: map[string]error{}}
}

var _ repository.TenantLocker = (*MockLocker)(nil)

func (m *MockLocker) LockTenant(ctx context.Context, tx repository.Tx, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.ErrOn[tenantID]; ok {
		return err
	}
	m.Locked = append(m.Locked, tenantID)
	return nil
}

// ---- Tenant repository ----

type memTenantRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Tenant
	saveErr error

	SaveFunc func(ctx context.Context, tx repository.Tx, t *model.Tenant) error
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{store: make(map[string]*model.Tenant)}
}

var _ repository.TenantRepository = (*memTenantRepo)(nil)

func (m *memTenantRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tenant) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, t)
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *memTenantRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTenantRepo) FindByOwner(ctx context.Context, tx repository.Tx, ownerID string) (*model.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.OwnerID == ownerID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTenantRepo) ListIDs(ctx context.Context, tx repository.Tx) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.store))
	for id := range m.store {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memTenantRepo) CountByPlan(ctx context.Context, tx repository.Tx) (map[model.Plan]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.Plan]int)
	for _, t := range m.store {
		out[t.CurrentPlan]++
	}
	return out, nil
}

// ---- Upgrade request repository ----

type memRequestRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.UpgradeRequest
	saveErr error
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{store: make(map[string]*model.UpgradeRequest)}
}

var _ repository.UpgradeRequestRepository = (*memRequestRepo)(nil)

func (m *memRequestRepo) Save(ctx context.Context, tx repository.Tx, r *model.UpgradeRequest) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *memRequestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UpgradeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRequestRepo) ListPendingByTenant(ctx context.Context, tx repository.Tx, tenantID string) ([]*model.UpgradeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.UpgradeRequest
	for _, r := range m.store {
		if r.TenantID == tenantID && r.Status == model.RequestStatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRequestRepo) ListByTenant(ctx context.Context, tx repository.Tx, tenantID string) ([]*model.UpgradeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.UpgradeRequest
	for _, r := range m.store {
		if r.TenantID == tenantID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRequestRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.RequestStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.RequestStatus]int)
	for _, r := range m.store {
		out[r.Status]++
	}
	return out, nil
}

// ---- Payment proof repository ----

type memProofRepo struct {
	mu    sync.RWMutex
	store map[string]*model.PaymentProof // by request id
}

func newMemProofRepo() *memProofRepo {
	return &memProofRepo{store: make(map[string]*model.PaymentProof)}
}

var _ repository.PaymentProofRepository = (*memProofRepo)(nil)

func (m *memProofRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentProof) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.RequestID] = &cp
	return nil
}

func (m *memProofRepo) FindByRequest(ctx context.Context, tx repository.Tx, requestID string) (*model.PaymentProof, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ---- Accounting repository ----

type memAccountingRepo struct {
	mu      sync.RWMutex
	Entries []*model.AccountingEntry
}

func newMemAccountingRepo() *memAccountingRepo { return &memAccountingRepo{} }

var _ repository.AccountingRepository = (*memAccountingRepo)(nil)

func (m *memAccountingRepo) Save(ctx context.Context, tx repository.Tx, e *model.AccountingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.Entries = append(m.Entries, &cp)
	return nil
}

func (m *memAccountingRepo) ListByTenant(ctx context.Context, tx repository.Tx, tenantID string) ([]*model.AccountingEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.AccountingEntry
	for _, e := range m.Entries {
		if e.TenantID == tenantID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAccountingRepo) SumByCategory(ctx context.Context, tx repository.Tx, tenantID, category string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.Entries {
		if e.TenantID == tenantID && e.Category == category {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// ---- Coupon repository ----

type memCouponRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Coupon // by code
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{store: make(map[string]*model.Coupon)}
}

var _ repository.CouponRepository = (*memCouponRepo)(nil)

func (m *memCouponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.Code] = &cp
	return nil
}

func (m *memCouponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCouponRepo) Consume(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok {
		return false, domain.ErrNotFound
	}
	if c.CurrentUses >= c.MaxUses {
		return false, nil
	}
	c.CurrentUses++
	if c.CurrentUses >= c.MaxUses {
		c.Status = model.CouponStatusUsedUp
	}
	return true, nil
}

// ---- Audit log repository ----

type memAuditRepo struct {
	mu      sync.RWMutex
	Records []*model.AuditRecord
}

func newMemAuditRepo() *memAuditRepo { return &memAuditRepo{} }

var _ repository.AuditLogRepository = (*memAuditRepo)(nil)

func (m *memAuditRepo) Record(ctx context.Context, tx repository.Tx, rec *model.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.Records = append(m.Records, &cp)
	return nil
}

// ---- Account usage source ----

type mockUsageSource struct {
	mu          sync.RWMutex
	Instructors map[string]int
	Students    map[string]int
	Err         error
}

func newMockUsageSource() *mockUsageSource {
	return &mockUsageSource{Instructors: map[string]int{}, Students: map[string]int{}}
}

var _ repository.AccountUsageSource = (*mockUsageSource)(nil)

func (m *mockUsageSource) Counts(ctx context.Context, tx repository.Tx, tenantID string) (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return 0, 0, m.Err
	}
	return m.Instructors[tenantID], m.Students[tenantID], nil
}

// ---- Notifier ----

type MockNotifier struct {
	mu     sync.Mutex
	Events []adapter.Event
}

func NewMockNotifier() *MockNotifier { return &MockNotifier{} }

var _ adapter.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, ev adapter.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
}

// ---- Payment gateway ----

type MockGateway struct {
	GatewayName          string
	CaptureFunc          func(ctx context.Context, req adapter.CaptureRequest) (adapter.CaptureResult, error)
	InitiateRedirectFunc func(ctx context.Context, req adapter.RedirectRequest) (adapter.RedirectResult, error)

	mu        sync.Mutex
	Captures  []adapter.CaptureRequest
	Redirects []adapter.RedirectRequest
}

func NewMockGateway(name string) *MockGateway { return &MockGateway{GatewayName: name} }

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (m *MockGateway) Name() string { return m.GatewayName }

func (m *MockGateway) Capture(ctx context.Context, req adapter.CaptureRequest) (adapter.CaptureResult, error) {
	m.mu.Lock()
	m.Captures = append(m.Captures, req)
	m.mu.Unlock()
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, req)
	}
	return adapter.CaptureResult{TransactionID: "tx-" + req.OrderID}, nil
}

func (m *MockGateway) InitiateRedirect(ctx context.Context, req adapter.RedirectRequest) (adapter.RedirectResult, error) {
	m.mu.Lock()
	m.Redirects = append(m.Redirects, req)
	m.mu.Unlock()
	if m.InitiateRedirectFunc != nil {
		return m.InitiateRedirectFunc(ctx, req)
	}
	return adapter.RedirectResult{PaymentID: "pay-" + req.OrderID, PayURL: "https://pay.example/" + req.OrderID}, nil
}
