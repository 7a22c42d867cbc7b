package repository

import (
	"context"

	"driving-school-platform/internal/domain/model"
)

// AuditLogRepository records admin/system actions. Append-only; the core
// never queries it.
type AuditLogRepository interface {
	Record(ctx context.Context, tx Tx, rec *model.AuditRecord) error
}
