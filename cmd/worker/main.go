// The worker reconciles payment sessions the frontend never finished
// polling: users who paid and closed the tab still get their upgrade.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"crowlands/internal/domain"
	"crowlands/internal/infra"
	"crowlands/internal/ledger"
	"crowlands/internal/payments"
)

const (
	sweepInterval = 30 * time.Second
	sweepBatch    = 50
)

type reconciler struct {
	sessions *payments.Store
	worker   *payments.Worker
	logger   infra.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	led := ledger.New(runner, logger, cfg.FreeMonthlyQuota)
	sessions := payments.NewStore(runner, logger)
	processor := payments.NewStripeProcessor(payments.StripeOptions{
		SecretKey: cfg.StripeSecretKey,
		BaseURL:   cfg.StripeBaseURL,
		PriceID:   cfg.StripePriceID,
	})
	confirm := payments.NewWorker(sessions, processor, led,
		payments.DefaultPollPolicy(cfg.PaymentPollAttempts, cfg.PaymentPollInterval), logger)

	r := &reconciler{sessions: sessions, worker: confirm, logger: logger}
	if err := r.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (r *reconciler) run(ctx context.Context) error {
	r.logger.Info().Msg("worker: started")
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		r.sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *reconciler) sweep(ctx context.Context) {
	ids, err := r.sessions.Pending(ctx, sweepBatch)
	if err != nil {
		r.logger.Error().Err(err).Msg("worker: listing pending sessions failed")
		return
	}
	if len(ids) == 0 {
		return
	}
	r.logger.Info().Int("count", len(ids)).Msg("worker: reconciling pending sessions")

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		status, err := r.worker.Confirm(ctx, id)
		switch {
		case errors.Is(err, domain.ErrVerificationTimeout):
			// Still pending at the processor; the next sweep retries.
			r.logger.Debug().Str("session_id", id).Msg("worker: session still pending")
		case err != nil:
			r.logger.Error().Err(err).Str("session_id", id).Msg("worker: confirm failed")
		default:
			r.logger.Info().Str("session_id", id).Str("status", string(status)).Msg("worker: session settled")
		}
	}
}
