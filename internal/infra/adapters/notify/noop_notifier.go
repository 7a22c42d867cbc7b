// File: internal/infra/adapters/notify/noop_notifier.go
package notify

import (
	"context"

	"driving-school-platform/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier is wired when no webhook endpoint is configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (NoopNotifier) Notify(ctx context.Context, ev adapter.Event) {}
