package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"crowlands/internal/domain"
	"crowlands/internal/infra"
)

// Upgrader is the slice of the entitlement ledger the worker needs once a
// session settles as paid.
type Upgrader interface {
	Upgrade(ctx context.Context, userID string, tier domain.SubscriptionTier, effectiveAt time.Time) error
}

// PollPolicy bounds one confirmation run. NewBackoff is invoked per run so
// stateful backoffs (exponential, jittered) start fresh each time.
type PollPolicy struct {
	MaxAttempts int
	NewBackoff  func() retry.Backoff
}

// DefaultPollPolicy waits a fixed interval between attempts.
func DefaultPollPolicy(attempts int, interval time.Duration) PollPolicy {
	return PollPolicy{
		MaxAttempts: attempts,
		NewBackoff:  func() retry.Backoff { return retry.NewConstant(interval) },
	}
}

var errStillPending = errors.New("session still pending")

// Worker resolves pending payment sessions against the processor and applies
// the entitlement consequence of a paid session.
type Worker struct {
	store     *Store
	processor Processor
	ledger    Upgrader
	policy    PollPolicy
	logger    infra.Logger
	now       func() time.Time
}

func NewWorker(store *Store, processor Processor, ledger Upgrader, policy PollPolicy, logger infra.Logger) *Worker {
	return &Worker{
		store:     store,
		processor: processor,
		ledger:    ledger,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

// Confirm polls the processor until the session reaches a terminal status or
// the poll budget runs out. A session that is already terminal returns
// immediately without touching the processor. Exhausting the budget leaves
// the session pending and returns ErrVerificationTimeout; the reconciler or
// a later call picks it up again.
func (w *Worker) Confirm(ctx context.Context, sessionID string) (domain.PaymentStatus, error) {
	sess, err := w.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Status.Terminal() {
		return sess.Status, nil
	}

	attempts := w.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), w.policy.NewBackoff())
	var status domain.PaymentStatus
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		st, perr := w.processor.SessionStatus(ctx, sessionID)
		if perr != nil {
			w.logger.Warn().Err(perr).Str("session_id", sessionID).Msg("processor status check failed")
			return retry.RetryableError(perr)
		}
		if !st.Terminal() {
			return retry.RetryableError(errStillPending)
		}
		status = st
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return domain.PaymentPending, fmt.Errorf("session %s after %d attempts: %w", sessionID, attempts, domain.ErrVerificationTimeout)
	}

	return w.settle(ctx, sess, status)
}

// CheckOnce performs a single processor check, for callers that bring their
// own cadence. A still-open session reports pending with no error.
func (w *Worker) CheckOnce(ctx context.Context, sessionID string) (domain.PaymentStatus, error) {
	sess, err := w.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Status.Terminal() {
		return sess.Status, nil
	}

	status, err := w.processor.SessionStatus(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("check session %s: %w", sessionID, err)
	}
	if !status.Terminal() {
		return domain.PaymentPending, nil
	}
	return w.settle(ctx, sess, status)
}

// settle records the terminal status and, when this call performed the
// pending-to-paid transition, upgrades the owner. The database guard makes
// the transition happen at most once even with concurrent confirmers, and
// Upgrade itself is idempotent on top of that.
func (w *Worker) settle(ctx context.Context, sess *domain.PaymentSession, status domain.PaymentStatus) (domain.PaymentStatus, error) {
	transitioned, err := w.store.Mark(ctx, sess.ID, status)
	if err != nil {
		return "", err
	}
	if !transitioned {
		w.logger.Info().Str("session_id", sess.ID).Str("status", string(status)).Msg("session already settled elsewhere")
	}

	if status == domain.PaymentPaid && transitioned {
		if err := w.ledger.Upgrade(ctx, sess.UserID, domain.TierPro, w.now()); err != nil {
			return "", fmt.Errorf("upgrade after payment: %w", err)
		}
		w.logger.Info().Str("session_id", sess.ID).Str("user_id", sess.UserID).Msg("payment confirmed, user upgraded")
	}
	return status, nil
}
