package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
)

var _ repository.AuditLogRepository = (*auditLogRepo)(nil)

type auditLogRepo struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepo(pool *pgxpool.Pool) *auditLogRepo {
	return &auditLogRepo{pool: pool}
}

func (r *auditLogRepo) Record(ctx context.Context, tx repository.Tx, rec *model.AuditRecord) error {
	before, err := json.Marshal(rec.Before)
	if err != nil {
		return fmt.Errorf("marshal audit before: %w", err)
	}
	after, err := json.Marshal(rec.After)
	if err != nil {
		return fmt.Errorf("marshal audit after: %w", err)
	}

	const q = `
INSERT INTO audit_log (id, actor, action, target_type, target_id, before_state, after_state, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err = execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.Actor, rec.Action, rec.TargetType, rec.TargetID, before, after, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}
