package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"driving-school-platform/internal/usecase"
)

// ObsoleteSweepWorker periodically cancels pending upgrade requests that
// can no longer be approved, typically left behind by a direct admin plan
// change. It always runs in apply mode; the dry run is reserved for the
// operator CLI.
type ObsoleteSweepWorker struct {
	uc       usecase.MaintenanceUseCase
	interval time.Duration
	log      *zerolog.Logger
}

func NewObsoleteSweepWorker(uc usecase.MaintenanceUseCase, interval time.Duration, logger *zerolog.Logger) *ObsoleteSweepWorker {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &ObsoleteSweepWorker{uc: uc, interval: interval, log: logger}
}

func (w *ObsoleteSweepWorker) Start(ctx context.Context) {
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

func (w *ObsoleteSweepWorker) tick(ctx context.Context) {
	report, err := w.uc.SweepObsoleteRequests(ctx, true)
	if err != nil {
		w.log.Error().Err(err).Msg("obsolete sweep failed")
		return
	}
	if report.Cancelled > 0 {
		w.log.Info().Int("cancelled", report.Cancelled).Msg("obsolete sweep cancelled requests")
	}
}
