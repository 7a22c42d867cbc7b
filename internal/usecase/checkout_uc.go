package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"driving-school-platform/internal/domain"
	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/adapter"
	"driving-school-platform/internal/infra/logging"
	"driving-school-platform/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// CardInput carries the provider-specific card fields for a sync capture.
type CardInput struct {
	Number     string
	HolderName string
	ExpiryMM   string
	ExpiryYY   string
	CVV        string
}

// WalletInput carries the fields for a redirect-based wallet payment.
type WalletInput struct {
	PhoneNumber string
}

// WalletCheckout is the handle returned to the caller so it can redirect
// the payer to the provider page.
type WalletCheckout struct {
	Request   *model.UpgradeRequest
	PaymentID string
	PayURL    string
}

// CheckoutUseCase layers automated payment on top of the request
// workflow. The request is persisted pending before any provider call so
// the provider always sees a stable order id, and the outcome drives the
// same approve/reject transitions an admin would.
type CheckoutUseCase interface {
	// PayByCard submits and captures in one call. A provider decline
	// rejects the request and surfaces the *adapter.GatewayError; a
	// network fault leaves the request pending for manual review.
	PayByCard(ctx context.Context, in SubmitInput, card CardInput) (*model.UpgradeRequest, error)
	// StartWalletPayment submits and initiates the redirect.
	StartWalletPayment(ctx context.Context, in SubmitInput, wallet WalletInput) (*WalletCheckout, error)
	// CompleteWalletPayment settles a request from the provider callback.
	CompleteWalletPayment(ctx context.Context, requestID string, success bool, transactionID, reason string) (*model.UpgradeRequest, error)
}

type checkoutUC struct {
	upgrades UpgradeUseCase
	card     adapter.PaymentGateway
	wallet   adapter.PaymentGateway
	currency string
	log      *zerolog.Logger
}

func NewCheckoutUseCase(
	upgrades UpgradeUseCase,
	card adapter.PaymentGateway,
	wallet adapter.PaymentGateway,
	currency string,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		upgrades: upgrades,
		card:     card,
		wallet:   wallet,
		currency: currency,
		log:      logger,
	}
}

// gatewayActor marks transitions driven by a payment outcome rather than
// a human admin.
var gatewayActor = model.SystemPrincipal("gateway")

func (u *checkoutUC) PayByCard(ctx context.Context, in SubmitInput, card CardInput) (*model.UpgradeRequest, error) {
	defer logging.TraceDuration(u.log, "CheckoutUC.PayByCard")()

	in.PaymentMethod = model.PaymentMethodCard
	req, err := u.upgrades.Submit(ctx, in)
	if err != nil {
		return nil, err
	}

	result, err := u.card.Capture(ctx, adapter.CaptureRequest{
		OrderID:  req.ID,
		Amount:   req.Amount,
		Currency: u.currency,
		MethodFields: map[string]string{
			"card_number": card.Number,
			"holder_name": card.HolderName,
			"expiry_mm":   card.ExpiryMM,
			"expiry_yy":   card.ExpiryYY,
			"cvv":         card.CVV,
		},
	})
	if err != nil {
		var gwErr *adapter.GatewayError
		if errors.As(err, &gwErr) {
			metrics.IncGatewayCapture(u.card.Name(), "declined")
			if _, rejErr := u.upgrades.Reject(ctx, req.ID, gatewayActor,
				"Card payment declined: "+gwErr.Reason); rejErr != nil {
				u.log.Error().Err(rejErr).
					Str("request_id", req.ID).
					Msg("failed to reject request after card decline")
			}
			return nil, gwErr
		}
		// Provider unreachable or timed out. The outcome is unknown, so
		// the request stays pending for manual settlement.
		metrics.IncGatewayCapture(u.card.Name(), "error")
		u.log.Error().Err(err).
			Str("request_id", req.ID).
			Msg("card capture failed, request left pending")
		return req, fmt.Errorf("card capture: %w", err)
	}

	metrics.IncGatewayCapture(u.card.Name(), "captured")
	approved, err := u.upgrades.Approve(ctx, req.ID, gatewayActor,
		"Automatic card payment, transaction "+result.TransactionID)
	if err != nil {
		// The money moved but the approval failed. Flag loudly; an admin
		// settles it from the proof of capture.
		u.log.Error().Err(err).
			Str("request_id", req.ID).
			Str("transaction_id", result.TransactionID).
			Msg("captured payment but approval failed, needs manual settlement")
		return req, err
	}
	return approved, nil
}

func (u *checkoutUC) StartWalletPayment(ctx context.Context, in SubmitInput, wallet WalletInput) (*WalletCheckout, error) {
	defer logging.TraceDuration(u.log, "CheckoutUC.StartWalletPayment")()

	in.PaymentMethod = model.PaymentMethodFlouci
	req, err := u.upgrades.Submit(ctx, in)
	if err != nil {
		return nil, err
	}

	result, err := u.wallet.InitiateRedirect(ctx, adapter.RedirectRequest{
		OrderID:     req.ID,
		Amount:      req.Amount,
		Currency:    u.currency,
		Description: string(req.RequestedPlan) + " plan subscription",
		PhoneNumber: wallet.PhoneNumber,
	})
	if err != nil {
		metrics.IncGatewayCapture(u.wallet.Name(), "error")
		// No payment page means no payer action can ever settle this
		// request, so it is cancelled rather than left pending.
		if _, cancelErr := u.upgrades.Cancel(ctx, req.ID, gatewayActor,
			"Wallet payment initiation failed"); cancelErr != nil {
			u.log.Error().Err(cancelErr).
				Str("request_id", req.ID).
				Msg("failed to cancel request after initiation failure")
		}
		return nil, fmt.Errorf("wallet initiate: %w", err)
	}

	u.log.Info().
		Str("request_id", req.ID).
		Str("payment_id", result.PaymentID).
		Msg("wallet payment initiated")
	return &WalletCheckout{Request: req, PaymentID: result.PaymentID, PayURL: result.PayURL}, nil
}

func (u *checkoutUC) CompleteWalletPayment(ctx context.Context, requestID string, success bool, transactionID, reason string) (*model.UpgradeRequest, error) {
	defer logging.TraceDuration(u.log, "CheckoutUC.CompleteWalletPayment")()

	if success {
		metrics.IncGatewayCapture(u.wallet.Name(), "captured")
		req, err := u.upgrades.Approve(ctx, requestID, gatewayActor,
			"Automatic wallet payment, transaction "+transactionID)
		if errors.Is(err, domain.ErrInvalidStateTransition) {
			// Duplicate callback delivery. The first one already settled.
			u.log.Warn().Str("request_id", requestID).Msg("wallet callback replay ignored")
			return nil, err
		}
		return req, err
	}

	metrics.IncGatewayCapture(u.wallet.Name(), "declined")
	if reason == "" {
		reason = "Wallet payment failed"
	}
	return u.upgrades.Reject(ctx, requestID, gatewayActor, reason)
}
