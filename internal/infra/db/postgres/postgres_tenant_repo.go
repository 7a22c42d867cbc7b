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
var _ repository.TenantRepository = (*tenantRepo)(nil)

type tenantRepo struct {
	pool *pgxpool.Pool
}

func NewTenantRepo(pool *pgxpool.Pool) *tenantRepo {
	return &tenantRepo{pool: pool}
}

const tenantColumns = `
id, owner_id, name, approval_status,
current_plan, plan_start_date, plan_end_date, max_accounts, renewal_count,
current_accounts, created_at, updated_at`

func (r *tenantRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tenant) error {
	const q = `
INSERT INTO tenants (
  id, owner_id, name, approval_status,
  current_plan, plan_start_date, plan_end_date, max_accounts, renewal_count,
  current_accounts, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  owner_id=$2, name=$3, approval_status=$4,
  current_plan=$5, plan_start_date=$6, plan_end_date=$7, max_accounts=$8, renewal_count=$9,
  current_accounts=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.OwnerID, t.Name, string(t.ApprovalStatus),
		string(t.CurrentPlan), t.PlanStartDate, t.PlanEndDate, t.MaxAccounts, t.RenewalCount,
		t.CurrentAccounts, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save tenant: %w", err)
	}
	return nil
}

func (r *tenantRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1;`
	row, err := queryRowSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanTenant(row)
}

func (r *tenantRepo) FindByOwner(ctx context.Context, tx repository.Tx, ownerID string) (*model.Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenants WHERE owner_id = $1;`
	row, err := queryRowSQL(ctx, r.pool, tx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return scanTenant(row)
}

func (r *tenantRepo) ListIDs(ctx context.Context, tx repository.Tx) ([]string, error) {
	const q = `SELECT id FROM tenants ORDER BY created_at;`
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list tenant ids: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *tenantRepo) CountByPlan(ctx context.Context, tx repository.Tx) (map[model.Plan]int, error) {
	const q = `SELECT current_plan, COUNT(1) FROM tenants GROUP BY current_plan;`
	rows, err := querySQL(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("count tenants by plan: %w", err)
	}
	defer rows.Close()
	out := make(map[model.Plan]int)
	for rows.Next() {
		var plan string
		var n int
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, err
		}
		out[model.Plan(plan)] = n
	}
	return out, rows.Err()
}

func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	var status, plan string
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Name, &status,
		&plan, &t.PlanStartDate, &t.PlanEndDate, &t.MaxAccounts, &t.RenewalCount,
		&t.CurrentAccounts, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	t.ApprovalStatus = model.ApprovalStatus(status)
	t.CurrentPlan = model.Plan(plan)
	return &t, nil
}
