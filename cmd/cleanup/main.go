// File: cmd/cleanup/main.go
// Cancels obsolete pending upgrade requests. Run with --dry-run first.
package main

import (
	"context"
	"flag"
	"log"

	"driving-school-platform/internal/config"
	pg "driving-school-platform/internal/infra/db/postgres"
	"driving-school-platform/internal/infra/logging"
	"driving-school-platform/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	dryRun := flag.Bool("dry-run", false, "report obsolete requests without cancelling")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx := context.Background()
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	txManager := pg.NewTxManager(pool)
	uc := usecase.NewMaintenanceUseCase(
		pg.NewTenantRepo(pool), pg.NewUpgradeRequestRepo(pool),
		pg.NewAccountUsageSource(pool), pg.NewAuditLogRepo(pool),
		txManager, txManager, logger)

	report, err := uc.SweepObsoleteRequests(ctx, !*dryRun)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweep")
	}
	logger.Info().
		Int("scanned", report.Scanned).
		Int("obsolete", report.Obsolete).
		Int("cancelled", report.Cancelled).
		Bool("dry_run", *dryRun).
		Msg("sweep finished")
}
