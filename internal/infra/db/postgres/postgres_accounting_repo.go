package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
)

var _ repository.AccountingRepository = (*accountingRepo)(nil)

type accountingRepo struct {
	pool *pgxpool.Pool
}

func NewAccountingRepo(pool *pgxpool.Pool) *accountingRepo {
	return &accountingRepo{pool: pool}
}

func (r *accountingRepo) Save(ctx context.Context, tx repository.Tx, e *model.AccountingEntry) error {
	const q = `
INSERT INTO accounting_entries (id, tenant_id, entry_type, category, description, amount, entry_date, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.TenantID, string(e.EntryType), e.Category, e.Description, e.Amount, e.Date, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save accounting entry: %w", err)
	}
	return nil
}

func (r *accountingRepo) ListByTenant(ctx context.Context, tx repository.Tx, tenantID string) ([]*model.AccountingEntry, error) {
	const q = `
SELECT id, tenant_id, entry_type, category, description, amount, entry_date, created_at
  FROM accounting_entries
 WHERE tenant_id = $1
 ORDER BY entry_date DESC, created_at DESC;`
	rows, err := querySQL(ctx, r.pool, tx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list accounting entries: %w", err)
	}
	defer rows.Close()
	var out []*model.AccountingEntry
	for rows.Next() {
		var e model.AccountingEntry
		var entryType string
		if err := rows.Scan(&e.ID, &e.TenantID, &entryType, &e.Category, &e.Description, &e.Amount, &e.Date, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EntryType = model.EntryType(entryType)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *accountingRepo) SumByCategory(ctx context.Context, tx repository.Tx, tenantID, category string) (decimal.Decimal, error) {
	const q = `
SELECT COALESCE(SUM(amount), 0)
  FROM accounting_entries
 WHERE tenant_id = $1 AND category = $2;`
	row, err := queryRowSQL(ctx, r.pool, tx, q, tenantID, category)
	if err != nil {
		return decimal.Zero, err
	}
	var sum decimal.Decimal
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum accounting entries: %w", err)
	}
	return sum, nil
}
