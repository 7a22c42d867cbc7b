package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"driving-school-platform/internal/domain"
	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/infra/metrics"
	"driving-school-platform/internal/usecase"
)

// PaymentVerifier re-checks a wallet payment with the provider before the
// callback outcome is trusted.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, paymentID string) (bool, string, error)
}

// Server exposes the wallet payment callback, the tenant subscription
// read endpoints, health, and Prometheus metrics. Account management for
// instructors and students lives in another service.
type Server struct {
	checkout usecase.CheckoutUseCase
	tenants  usecase.TenantUseCase
	upgrades usecase.UpgradeUseCase
	verifier PaymentVerifier
	log      *zerolog.Logger
}

func NewServer(checkout usecase.CheckoutUseCase, tenants usecase.TenantUseCase, upgrades usecase.UpgradeUseCase, verifier PaymentVerifier, logger *zerolog.Logger) *Server {
	return &Server{checkout: checkout, tenants: tenants, upgrades: upgrades, verifier: verifier, log: logger}
}

// Router builds the chi mux with all routes attached.
func (s *Server) Router() http.Handler {
	metrics.MustRegister()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(TraceID)
	r.Use(RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/payment/callback/flouci", s.handleFlouciCallback)
	r.Get("/api/plans", s.handlePlanCatalog)
	r.Get("/api/tenants/{tenantID}/subscription", s.handleSubscriptionInfo)
	r.Get("/api/tenants/{tenantID}/billing", s.handleBillingHistory)
	r.Get("/api/tenants/{tenantID}/requests", s.handleRequestHistory)

	return r
}

func (s *Server) handlePlanCatalog(w http.ResponseWriter, r *http.Request) {
	plans := model.AllPlans()
	items := make([]map[string]any, 0, len(plans))
	for _, def := range plans {
		items = append(items, map[string]any{
			"plan":          def.Name,
			"display_name":  def.DisplayName,
			"price":         def.Price,
			"duration_days": def.DurationDays,
			"features":      def.Features,
		})
	}
	s.writeJSON(w, map[string]any{"plans": items})
}

func (s *Server) handleSubscriptionInfo(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	info, err := s.tenants.SubscriptionInfo(r.Context(), tenantID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{
		"plan":             info.CurrentPlan,
		"display_name":     info.DisplayName,
		"price":            info.Price,
		"plan_start_date":  info.PlanStartDate,
		"plan_end_date":    info.PlanEndDate,
		"days_remaining":   info.DaysRemaining,
		"max_accounts":     info.MaxAccounts,
		"current_accounts": info.CurrentAccounts,
		"can_upgrade":      info.CanUpgrade,
		"can_renew":        info.CanRenew,
		"features":         info.Features,
	})
}

func (s *Server) handleBillingHistory(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	entries, total, err := s.tenants.BillingHistory(r.Context(), tenantID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{
			"id":          e.ID,
			"entry_type":  e.EntryType,
			"category":    e.Category,
			"description": e.Description,
			"amount":      e.Amount,
			"date":        e.Date,
		})
	}
	s.writeJSON(w, map[string]any{"entries": items, "total_subscription": total})
}

func (s *Server) handleRequestHistory(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	requests, err := s.upgrades.ListByTenant(r.Context(), tenantID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(requests))
	for _, req := range requests {
		items = append(items, map[string]any{
			"id":             req.ID,
			"current_plan":   req.CurrentPlan,
			"requested_plan": req.RequestedPlan,
			"is_renewal":     req.IsRenewal,
			"status":         req.Status,
			"amount":         req.Amount,
			"payment_method": req.PaymentMethod,
			"created_at":     req.CreatedAt,
			"processed_at":   req.ProcessedAt,
			"admin_notes":    req.AdminNotes,
		})
	}
	s.writeJSON(w, map[string]any{"requests": items})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.log.Error().Err(err).Msg("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// handleFlouciCallback settles a wallet payment. The redirect parameters
// only carry the payment id; the outcome is taken from the provider's
// verify endpoint, never from the query string.
func (s *Server) handleFlouciCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	paymentID := r.URL.Query().Get("payment_id")
	requestID := r.URL.Query().Get("developer_tracking_id")
	if paymentID == "" || requestID == "" {
		http.Error(w, "missing payment_id or developer_tracking_id", http.StatusBadRequest)
		return
	}

	success, transactionID, err := s.verifier.VerifyPayment(ctx, paymentID)
	if err != nil {
		s.log.Error().Err(err).Str("payment_id", paymentID).Msg("wallet payment verification failed")
		http.Error(w, "verification failed", http.StatusBadGateway)
		return
	}

	if _, err := s.checkout.CompleteWalletPayment(ctx, requestID, success, transactionID, "Wallet payment not completed"); err != nil {
		s.log.Error().Err(err).
			Str("request_id", requestID).
			Bool("success", success).
			Msg("wallet settlement failed")
		http.Error(w, "settlement failed", http.StatusConflict)
		return
	}

	w.WriteHeader(http.StatusOK)
	if success {
		_, _ = w.Write([]byte("payment confirmed"))
		return
	}
	_, _ = w.Write([]byte("payment not completed"))
}
