package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"driving-school-platform/internal/domain/ports/repository"
	"driving-school-platform/internal/infra/metrics"
)

// StatsWorker refreshes the tenant and request gauges so dashboards see
// current totals without a query on every scrape.
type StatsWorker struct {
	tenants  repository.TenantRepository
	requests repository.UpgradeRequestRepository
	interval time.Duration
	log      *zerolog.Logger
}

func NewStatsWorker(tenants repository.TenantRepository, requests repository.UpgradeRequestRepository, interval time.Duration, logger *zerolog.Logger) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsWorker{tenants: tenants, requests: requests, interval: interval, log: logger}
}

func (w *StatsWorker) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *StatsWorker) tick(ctx context.Context) {
	if counts, err := w.tenants.CountByPlan(ctx, repository.NoTX); err != nil {
		w.log.Warn().Err(err).Msg("count tenants by plan failed")
	} else {
		metrics.SetTenantsByPlan(counts)
	}
	if counts, err := w.requests.CountByStatus(ctx, repository.NoTX); err != nil {
		w.log.Warn().Err(err).Msg("count requests by status failed")
	} else {
		metrics.SetRequestsByStatus(counts)
	}
}
