package adapter

import "context"

// EventType labels workflow notifications.
type EventType string

const (
	EventRequestSubmitted EventType = "upgrade_request.submitted"
	EventRequestApproved  EventType = "upgrade_request.approved"
	EventRequestRejected  EventType = "upgrade_request.rejected"
	EventPlanChanged      EventType = "tenant.plan_changed"
)

// Event is the payload handed to the notification collaborator.
type Event struct {
	Type      EventType
	TenantID  string
	RequestID string
	Payload   map[string]any
}

// Notifier delivers workflow events fire-and-forget. Implementations must
// swallow delivery failures; a lost notification never rolls back the
// domain transaction.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}
