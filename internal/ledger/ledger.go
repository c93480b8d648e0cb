// Package ledger implements per-user entitlement bookkeeping: atomic quota
// reservation, status reads, and tier upgrades. All mutations go through
// single guarded SQL statements so concurrent reservations for one user are
// linearizable without cross-user contention.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"crowlands/internal/domain"
	"crowlands/internal/infra"
	"crowlands/internal/sqlinline"
)

// Reservation is the outcome of a Reserve call. A denial is a normal
// outcome, not an error: Granted is false and Remaining is zero.
type Reservation struct {
	Granted     bool
	Tier        domain.SubscriptionTier
	Limit       int
	Remaining   int
	Unlimited   bool
	PeriodStart time.Time
}

// Status describes a user's current entitlement without consuming anything.
type Status struct {
	Tier        domain.SubscriptionTier
	Limit       int
	Remaining   int
	Unlimited   bool
	PeriodStart time.Time
}

// Ledger provides quota accounting on top of the entitlements table.
type Ledger struct {
	sql       infra.SQLExecutor
	logger    infra.Logger
	freeQuota int
}

func New(sql infra.SQLExecutor, logger infra.Logger, freeQuota int) *Ledger {
	return &Ledger{sql: sql, logger: logger, freeQuota: freeQuota}
}

// Reserve atomically consumes one generation unit for the user. The row is
// created (or rolled over into the current calendar month) first, then a
// single guarded update performs the check-and-increment. A free-tier user
// at the limit is denied without side effects.
func (l *Ledger) Reserve(ctx context.Context, userID string) (*Reservation, error) {
	if _, err := l.sql.Exec(ctx, sqlinline.QEnsureEntitlement, userID, l.freeQuota); err != nil {
		return nil, fmt.Errorf("ensure entitlement: %w", err)
	}

	row := l.sql.QueryRow(ctx, sqlinline.QReserveUnit, userID)
	var (
		tier        string
		quota       int
		consumed    int
		periodStart time.Time
	)
	err := row.Scan(&tier, &quota, &consumed, &periodStart)
	if errors.Is(err, pgx.ErrNoRows) {
		// Quota exhausted: report the denial with the current numbers.
		st, serr := l.Status(ctx, userID)
		if serr != nil {
			return nil, serr
		}
		l.logger.Debug().Str("user_id", userID).Int("limit", st.Limit).Msg("reservation denied")
		return &Reservation{
			Tier:        st.Tier,
			Limit:       st.Limit,
			Remaining:   0,
			PeriodStart: st.PeriodStart,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reserve quota unit: %w", err)
	}

	t := domain.SubscriptionTier(tier)
	res := &Reservation{
		Granted:     true,
		Tier:        t,
		Limit:       quota,
		Unlimited:   t.Unlimited(),
		PeriodStart: periodStart,
	}
	if !res.Unlimited {
		res.Remaining = quota - consumed
		if res.Remaining < 0 {
			res.Remaining = 0
		}
	}
	return res, nil
}

// Status reads the entitlement rollover-aware without writing. A user with
// no row yet reports a full free-tier allowance.
func (l *Ledger) Status(ctx context.Context, userID string) (*Status, error) {
	row := l.sql.QueryRow(ctx, sqlinline.QSelectEntitlement, userID)
	var (
		tier        string
		quota       int
		consumed    int
		periodStart time.Time
	)
	err := row.Scan(&tier, &quota, &consumed, &periodStart)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Status{
			Tier:        domain.TierFree,
			Limit:       l.freeQuota,
			Remaining:   l.freeQuota,
			PeriodStart: currentPeriodStart(time.Now()),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select entitlement: %w", err)
	}

	t := domain.SubscriptionTier(tier)
	st := &Status{
		Tier:        t,
		Limit:       quota,
		Unlimited:   t.Unlimited(),
		PeriodStart: periodStart,
	}
	if !st.Unlimited {
		st.Remaining = quota - consumed
		if st.Remaining < 0 {
			st.Remaining = 0
		}
	}
	return st, nil
}

// Upgrade moves the user to the given tier. Upgrading to the current tier is
// a no-op and downgrades are refused; both are enforced by the guarded SQL
// update, so concurrent upgrades are safe.
func (l *Ledger) Upgrade(ctx context.Context, userID string, tier domain.SubscriptionTier, effectiveAt time.Time) error {
	if tier != domain.TierPro {
		return fmt.Errorf("upgrade to tier %q is not supported", tier)
	}
	if _, err := l.sql.Exec(ctx, sqlinline.QUpgradeTier, userID, string(tier), l.freeQuota, effectiveAt); err != nil {
		return fmt.Errorf("upgrade tier: %w", err)
	}
	l.logger.Info().Str("user_id", userID).Str("tier", string(tier)).Msg("entitlement upgraded")
	return nil
}

// currentPeriodStart returns the calendar-month boundary for t in UTC,
// matching date_trunc('month', now(), 'utc') on the database side.
func currentPeriodStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
