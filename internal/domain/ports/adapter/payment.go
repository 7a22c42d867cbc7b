package adapter

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// GatewayError is a declined or failed capture reported by the provider.
// It is a business outcome, not an infrastructure fault: the workflow
// answers it by rejecting the request.
type GatewayError struct {
	Provider string
	Code     string
	Reason   string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Reason, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// CaptureRequest carries a synchronous capture attempt. OrderID is the
// UpgradeRequest id, already persisted before the call.
type CaptureRequest struct {
	OrderID      string
	Amount       decimal.Decimal
	Currency     string
	MethodFields map[string]string // provider-specific fields (card number, holder, ...)
}

type CaptureResult struct {
	TransactionID string
}

// RedirectRequest initiates a redirect-based (wallet) payment.
type RedirectRequest struct {
	OrderID     string
	Amount      decimal.Decimal
	Currency    string
	Description string
	PhoneNumber string
}

type RedirectResult struct {
	PaymentID string
	PayURL    string
}

// PaymentGateway is the port for payment providers. A provider implements
// the mode it supports and returns ErrUnsupportedMode for the other.
type PaymentGateway interface {
	Name() string
	// Capture performs a synchronous charge. A provider decline comes
	// back as *GatewayError.
	Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error)
	// InitiateRedirect starts an async payment and returns the URL the
	// payer must visit; the outcome arrives later on the callback.
	InitiateRedirect(ctx context.Context, req RedirectRequest) (RedirectResult, error)
}

// ErrUnsupportedMode is returned by gateways for the mode they do not
// implement (e.g. a redirect-only wallet asked for a sync capture).
var ErrUnsupportedMode = fmt.Errorf("payment mode not supported by this gateway")
