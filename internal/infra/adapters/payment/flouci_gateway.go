// File: internal/infra/adapters/payment/flouci_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"driving-school-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*FlouciGateway)(nil)

// milliemesPerUnit converts dinar-denominated amounts to the millime
// integers the Tunisian providers expect.
var milliemesPerUnit = decimal.NewFromInt(1000)

// FlouciGateway implements the redirect (wallet) mode against the Flouci
// payment API. The payer finishes on Flouci's page; the outcome arrives
// on our callback with the payment id.
type FlouciGateway struct {
	appToken    string
	appSecret   string
	baseURL     string
	successLink string
	failLink    string
	timeoutSecs int
	client      *http.Client
}

func NewFlouciGateway(appToken, appSecret, baseURL, successLink, failLink string, timeoutSecs int) (*FlouciGateway, error) {
	if appToken == "" || appSecret == "" {
		return nil, errors.New("flouci credentials empty")
	}
	if baseURL == "" {
		baseURL = "https://developers.flouci.com/api"
	}
	if timeoutSecs <= 0 {
		timeoutSecs = 1200
	}
	return &FlouciGateway{
		appToken:    appToken,
		appSecret:   appSecret,
		baseURL:     baseURL,
		successLink: successLink,
		failLink:    failLink,
		timeoutSecs: timeoutSecs,
		client:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *FlouciGateway) Name() string { return "flouci" }

func (g *FlouciGateway) Capture(ctx context.Context, req adapter.CaptureRequest) (adapter.CaptureResult, error) {
	return adapter.CaptureResult{}, adapter.ErrUnsupportedMode
}

// InitiateRedirect calls generate_payment. The order id travels as
// developer_tracking_id so the callback can be matched to the request.
func (g *FlouciGateway) InitiateRedirect(ctx context.Context, req adapter.RedirectRequest) (adapter.RedirectResult, error) {
	payload := map[string]any{
		"app_token":             g.appToken,
		"app_secret":            g.appSecret,
		"amount":                req.Amount.Mul(milliemesPerUnit).IntPart(),
		"accept_card":           true,
		"session_timeout_secs":  g.timeoutSecs,
		"success_link":          g.successLink,
		"fail_link":             g.failLink,
		"developer_tracking_id": req.OrderID,
	}
	b, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/generate_payment", bytes.NewReader(b))
	if err != nil {
		return adapter.RedirectResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return adapter.RedirectResult{}, fmt.Errorf("flouci generate_payment: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Result struct {
			Success   bool   `json:"success"`
			Link      string `json:"link"`
			PaymentID string `json:"payment_id"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.RedirectResult{}, fmt.Errorf("flouci decode: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.Result.Success || out.Result.Link == "" {
		return adapter.RedirectResult{}, &adapter.GatewayError{
			Provider: g.Name(),
			Reason:   "payment initiation refused",
		}
	}
	return adapter.RedirectResult{PaymentID: out.Result.PaymentID, PayURL: out.Result.Link}, nil
}

// VerifyPayment queries the payment status after a callback so the
// approval never trusts the redirect parameters alone.
func (g *FlouciGateway) VerifyPayment(ctx context.Context, paymentID string) (bool, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/verify_payment/"+paymentID, nil)
	if err != nil {
		return false, "", err
	}
	httpReq.Header.Set("apppublic", g.appToken)
	httpReq.Header.Set("appsecret", g.appSecret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return false, "", fmt.Errorf("flouci verify_payment: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Success bool `json:"success"`
		Result  struct {
			Status              string `json:"status"`
			TransactionID       string `json:"transaction_id"`
			DeveloperTrackingID string `json:"developer_tracking_id"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, "", fmt.Errorf("flouci decode: %w", err)
	}
	return out.Success && out.Result.Status == "SUCCESS", out.Result.TransactionID, nil
}
