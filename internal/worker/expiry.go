package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/salonflow/salon-api/internal/service/booking"
)

// ExpiryWorker periodically sweeps appointments whose window has
// passed, moving confirmed and in-progress ones to completed.
type ExpiryWorker struct {
	booking  *booking.Service
	interval time.Duration
	log      zerolog.Logger
}

func NewExpiryWorker(booking *booking.Service, interval time.Duration, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		booking:  booking,
		interval: interval,
		log:      log,
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.interval).Msg("expiry worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("expiry worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	swept, err := w.booking.ExpireOverdue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to sweep overdue appointments")
		return
	}
	if swept > 0 {
		w.log.Info().Int64("appointments", swept).Msg("swept overdue appointments")
	}
}
