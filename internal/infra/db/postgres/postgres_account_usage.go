package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"driving-school-platform/internal/domain/ports/repository"
)

var _ repository.AccountUsageSource = (*accountUsageSource)(nil)

// accountUsageSource reads live instructor and student counts from the
// account tables owned by the CRUD subsystems.
type accountUsageSource struct {
	pool *pgxpool.Pool
}

func NewAccountUsageSource(pool *pgxpool.Pool) *accountUsageSource {
	return &accountUsageSource{pool: pool}
}

func (s *accountUsageSource) Counts(ctx context.Context, tx repository.Tx, tenantID string) (int, int, error) {
	const q = `
SELECT
  (SELECT COUNT(1) FROM instructors WHERE tenant_id = $1 AND active),
  (SELECT COUNT(1) FROM students WHERE tenant_id = $1 AND active);`
	row, err := queryRowSQL(ctx, s.pool, tx, q, tenantID)
	if err != nil {
		return 0, 0, err
	}
	var instructors, students int
	if err := row.Scan(&instructors, &students); err != nil {
		return 0, 0, fmt.Errorf("count accounts: %w", err)
	}
	return instructors, students, nil
}
