// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"driving-school-platform/internal/config"
	"driving-school-platform/internal/domain/ports/adapter"
	notifyAdapters "driving-school-platform/internal/infra/adapters/notify"
	payAdapters "driving-school-platform/internal/infra/adapters/payment"
	"driving-school-platform/internal/infra/api"
	pg "driving-school-platform/internal/infra/db/postgres"
	"driving-school-platform/internal/infra/logging"
	red "driving-school-platform/internal/infra/redis"
	"driving-school-platform/internal/infra/sched"
	"driving-school-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop payment gateways)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	tenantRepo := pg.NewTenantRepoCacheDecorator(pg.NewTenantRepo(pool), redisClient, cfg.Redis.TTL)
	requestRepo := pg.NewUpgradeRequestRepo(pool)
	proofRepo := pg.NewPaymentProofRepo(pool)
	accountingRepo := pg.NewAccountingRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)
	usageSource := pg.NewAccountUsageSource(pool)

	// ---- Notifier ----
	var notifier adapter.Notifier
	if cfg.Notifier.WebhookURL != "" {
		notifier = notifyAdapters.NewWebhookNotifier(cfg.Notifier.WebhookURL, logger)
	} else {
		notifier = notifyAdapters.NewNoopNotifier()
	}

	// ---- Payment gateways ----
	var cardGateway, walletGateway adapter.PaymentGateway
	var verifier api.PaymentVerifier
	if cfg.Runtime.Dev {
		cardGateway = payAdapters.NewNoopGateway("clicktopay")
		walletGateway = payAdapters.NewNoopGateway("flouci")
		verifier = devVerifier{}
	} else {
		cardGateway, err = payAdapters.NewClickToPayGateway(
			cfg.Payment.ClickToPay.MerchantID, cfg.Payment.ClickToPay.APIKey,
			cfg.Payment.ClickToPay.BaseURL, cfg.Payment.ClickToPay.Sandbox)
		if err != nil {
			logger.Fatal().Err(err).Msg("clicktopay gateway")
		}
		flouci, err := payAdapters.NewFlouciGateway(
			cfg.Payment.Flouci.AppToken, cfg.Payment.Flouci.AppSecret,
			cfg.Payment.Flouci.BaseURL, cfg.Payment.Flouci.SuccessLink,
			cfg.Payment.Flouci.FailLink, cfg.Payment.Flouci.TimeoutSecs)
		if err != nil {
			logger.Fatal().Err(err).Msg("flouci gateway")
		}
		walletGateway = flouci
		verifier = flouci
	}

	// ---- Use cases ----
	upgradeUC := usecase.NewUpgradeUseCase(
		tenantRepo, requestRepo, proofRepo, accountingRepo, couponRepo, auditRepo,
		notifier, txManager, txManager, logger)
	tenantUC := usecase.NewTenantUseCase(
		tenantRepo, requestRepo, usageSource, accountingRepo, auditRepo,
		notifier, txManager, txManager, logger)
	checkoutUC := usecase.NewCheckoutUseCase(
		upgradeUC, cardGateway, walletGateway, cfg.Payment.Currency, logger)
	maintenanceUC := usecase.NewMaintenanceUseCase(
		tenantRepo, requestRepo, usageSource, auditRepo,
		txManager, txManager, logger)

	// ---- Workers ----
	sweepWorker := sched.NewObsoleteSweepWorker(maintenanceUC, cfg.Jobs.SweepInterval, logger)
	go sweepWorker.Start(ctx)
	countWorker := sched.NewAccountCountWorker(maintenanceUC, cfg.Jobs.RecountInterval, logger)
	go countWorker.Start(ctx)
	statsWorker := sched.NewStatsWorker(tenantRepo, requestRepo, time.Minute, logger)
	go statsWorker.Start(ctx)

	// ---- HTTP server ----
	srv := api.NewServer(checkoutUC, tenantUC, upgradeUC, verifier, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	_ = server.Shutdown(context.Background())
	cancel()
}

// devVerifier settles every wallet callback as successful; dev mode only.
type devVerifier struct{}

func (devVerifier) VerifyPayment(ctx context.Context, paymentID string) (bool, string, error) {
	return true, "dev-" + paymentID, nil
}
