package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"driving-school-platform/internal/usecase"
)

// AccountCountWorker periodically reconciles the cached per-tenant
// account counts against the live instructor and student tables, catching
// drift from account mutations that skipped the explicit recompute.
type AccountCountWorker struct {
	uc       usecase.MaintenanceUseCase
	interval time.Duration
	log      *zerolog.Logger
}

func NewAccountCountWorker(uc usecase.MaintenanceUseCase, interval time.Duration, logger *zerolog.Logger) *AccountCountWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AccountCountWorker{uc: uc, interval: interval, log: logger}
}

func (w *AccountCountWorker) Start(ctx context.Context) {
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

func (w *AccountCountWorker) tick(ctx context.Context) {
	report, err := w.uc.RecomputeAccountCounts(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("account count reconcile failed")
		return
	}
	if report.Fixed > 0 {
		w.log.Info().Int("fixed", report.Fixed).Msg("account counts corrected")
	}
}
