package domain

import "time"

// SubscriptionTier enumerates billing tiers.
type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPro  SubscriptionTier = "pro"
)

// Unlimited reports whether the tier is exempt from quota enforcement.
func (t SubscriptionTier) Unlimited() bool {
	return t == TierPro
}

// Entitlement is the per-user quota record. consumed counts successful
// reservations in the current period; it rolls over lazily each calendar
// month.
type Entitlement struct {
	UserID      string
	Tier        SubscriptionTier
	Quota       int
	Consumed    int
	PeriodStart time.Time
}

// Remaining returns the grants left in the current period. Pro tier has no
// meaningful remaining value; callers should check Tier.Unlimited first.
func (e Entitlement) Remaining() int {
	if e.Tier.Unlimited() {
		return 0
	}
	if e.Consumed >= e.Quota {
		return 0
	}
	return e.Quota - e.Consumed
}
