// File: internal/infra/adapters/payment/clicktopay_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"driving-school-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*ClickToPayGateway)(nil)

// ClickToPayGateway implements the synchronous card-capture mode against
// the ClickToPay merchant API. It does not support redirects.
type ClickToPayGateway struct {
	merchantID string
	apiKey     string
	baseURL    string
	sandbox    bool
	client     *http.Client
}

func NewClickToPayGateway(merchantID, apiKey, baseURL string, sandbox bool) (*ClickToPayGateway, error) {
	if merchantID == "" || apiKey == "" {
		return nil, errors.New("clicktopay credentials empty")
	}
	if baseURL == "" {
		baseURL = "https://api.clicktopay.tn/v1"
		if sandbox {
			baseURL = "https://sandbox.clicktopay.tn/v1"
		}
	}
	return &ClickToPayGateway{
		merchantID: merchantID,
		apiKey:     apiKey,
		baseURL:    baseURL,
		sandbox:    sandbox,
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (g *ClickToPayGateway) Name() string { return "clicktopay" }

// Capture charges the card in one round trip. The amount travels in
// millimes; OrderID is echoed back by the provider for reconciliation.
func (g *ClickToPayGateway) Capture(ctx context.Context, req adapter.CaptureRequest) (adapter.CaptureResult, error) {
	payload := map[string]any{
		"merchant_id": g.merchantID,
		"order_id":    req.OrderID,
		"amount":      req.Amount.Mul(milliemesPerUnit).IntPart(),
		"currency":    req.Currency,
		"card": map[string]string{
			"number":      req.MethodFields["card_number"],
			"holder_name": req.MethodFields["holder_name"],
			"expiry_mm":   req.MethodFields["expiry_mm"],
			"expiry_yy":   req.MethodFields["expiry_yy"],
			"cvv":         req.MethodFields["cvv"],
		},
	}
	b, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(b))
	if err != nil {
		return adapter.CaptureResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return adapter.CaptureResult{}, fmt.Errorf("clicktopay charge: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
		Code          string `json:"code"`
		Message       string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.CaptureResult{}, fmt.Errorf("clicktopay decode: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.Status != "captured" {
		reason := out.Message
		if reason == "" {
			reason = "payment declined"
		}
		return adapter.CaptureResult{}, &adapter.GatewayError{
			Provider: g.Name(),
			Code:     out.Code,
			Reason:   reason,
		}
	}
	return adapter.CaptureResult{TransactionID: out.TransactionID}, nil
}

func (g *ClickToPayGateway) InitiateRedirect(ctx context.Context, req adapter.RedirectRequest) (adapter.RedirectResult, error) {
	return adapter.RedirectResult{}, adapter.ErrUnsupportedMode
}
