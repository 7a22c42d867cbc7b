package model

import "time"

// AuditRecord is an append-only trail line for every mutating operation.
// The core writes it and never reads it back.
type AuditRecord struct {
	ID         string // UUID
	Actor      string
	Action     string
	TargetType string
	TargetID   string
	Before     map[string]any
	After      map[string]any
	CreatedAt  time.Time
}
