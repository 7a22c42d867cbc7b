package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"driving-school-platform/internal/domain"
	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.UpgradeRequestRepository = (*upgradeRequestRepo)(nil)

type upgradeRequestRepo struct {
	pool *pgxpool.Pool
}

func NewUpgradeRequestRepo(pool *pgxpool.Pool) *upgradeRequestRepo {
	return &upgradeRequestRepo{pool: pool}
}

const requestColumns = `
id, tenant_id, current_plan, requested_plan, payment_method, amount,
is_renewal, status, created_at, processed_at, processed_by, admin_notes`

func (r *upgradeRequestRepo) Save(ctx context.Context, tx repository.Tx, req *model.UpgradeRequest) error {
	const q = `
INSERT INTO upgrade_requests (
  id, tenant_id, current_plan, requested_plan, payment_method, amount,
  is_renewal, status, created_at, processed_at, processed_by, admin_notes
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  status=$8, processed_at=$10, processed_by=$11, admin_notes=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		req.ID, req.TenantID, string(req.CurrentPlan), string(req.RequestedPlan),
		string(req.PaymentMethod), req.Amount,
		req.IsRenewal, string(req.Status), req.CreatedAt,
		req.ProcessedAt, req.ProcessedBy, req.AdminNotes,
	)
	if err != nil {
		return fmt.Errorf("save upgrade request: %w", err)
	}
	return nil
}

func (r *upgradeRequestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UpgradeRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM upgrade_requests WHERE id = $1;`
	row, err := queryRowSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanRequest(row)
}

func (r *upgradeRequestRepo) ListPendingByTenant(ctx context.Context, tx repository.Tx, tenantID string) ([]*model.UpgradeRequest, error) {
	const q = `SELECT ` + requestColumns + `
  FROM upgrade_requests
 WHERE tenant_id = $1 AND status = 'pending'
 ORDER BY created_at;`
	return r.list(ctx, tx, q, tenantID)
}

func (r *upgradeRequestRepo) ListByTenant(ctx context.Context, tx repository.Tx, tenantID string) ([]*model.UpgradeRequest, error) {
	const q = `SELECT ` + requestColumns + `
  FROM upgrade_requests
 WHERE tenant_id = $1
 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, tenantID)
}

func (r *upgradeRequestRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.RequestStatus]int, error) {
	const q = `SELECT status, COUNT(1) FROM upgrade_requests GROUP BY status;`
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	defer rows.Close()
	out := make(map[model.RequestStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.RequestStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *upgradeRequestRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.UpgradeRequest, error) {
	rows, err := querySQL(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list upgrade requests: %w", err)
	}
	defer rows.Close()
	var out []*model.UpgradeRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*model.UpgradeRequest, error) {
	var req model.UpgradeRequest
	var current, requested, method, status string
	err := row.Scan(
		&req.ID, &req.TenantID, &current, &requested, &method, &req.Amount,
		&req.IsRenewal, &status, &req.CreatedAt,
		&req.ProcessedAt, &req.ProcessedBy, &req.AdminNotes,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan upgrade request: %w", err)
	}
	req.CurrentPlan = model.Plan(current)
	req.RequestedPlan = model.Plan(requested)
	req.PaymentMethod = model.PaymentMethod(method)
	req.Status = model.RequestStatus(status)
	return &req, nil
}
