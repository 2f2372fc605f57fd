package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"heartlink/internal/domain/ports/repository"
	"heartlink/internal/infra/metrics"
)

// ExpiryWorker reconciles the has_chat_access flag column for users whose
// access window has passed. Reads already enforce expiry; this keeps the
// stored flag honest for reporting and discover queries.
type ExpiryWorker struct {
	interval time.Duration
	users    repository.UserRepository
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, users repository.UserRepository, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		users:    users,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting access expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once on startup, then on every tick.
	w.runCheck(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping access expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *ExpiryWorker) runCheck(ctx context.Context) {
	n, err := w.users.RevokeExpiredAccess(ctx, repository.NoTx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("access expiry sweep failed")
		return
	}
	if n > 0 {
		metrics.AddAccessRevoked(n)
		w.log.Info().Int64("count", n).Msg("expired chat access revoked")
	}
}
