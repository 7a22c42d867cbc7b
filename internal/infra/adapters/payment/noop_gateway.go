// File: internal/infra/adapters/payment/noop_gateway.go
package payment

import (
	"context"

	"driving-school-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway approves everything. Wired only in dev mode so the checkout
// flows can run without provider credentials.
type NoopGateway struct {
	name string
}

func NewNoopGateway(name string) *NoopGateway { return &NoopGateway{name: name} }

func (g *NoopGateway) Name() string { return g.name }

func (g *NoopGateway) Capture(ctx context.Context, req adapter.CaptureRequest) (adapter.CaptureResult, error) {
	return adapter.CaptureResult{TransactionID: "noop-" + req.OrderID}, nil
}

func (g *NoopGateway) InitiateRedirect(ctx context.Context, req adapter.RedirectRequest) (adapter.RedirectResult, error) {
	return adapter.RedirectResult{
		PaymentID: "noop-" + req.OrderID,
		PayURL:    "https://example.invalid/pay/" + req.OrderID,
	}, nil
}
