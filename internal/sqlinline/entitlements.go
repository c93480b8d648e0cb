package sqlinline

// QEnsureEntitlement creates the entitlement row on a user's first
// reservation and applies the lazy calendar-month rollover before a reserve
// is evaluated. It never increments consumed.
const QEnsureEntitlement = `--sql a81e2aab-bc71-4523-87f9-88c5eea79a80
insert into entitlements (user_id, tier, quota, consumed, period_start, created_at, updated_at)
values ($1::uuid, 'free', $2::int, 0, date_trunc('month', now(), 'utc'), now(), now())
on conflict (user_id) do update set
    consumed = case
        when entitlements.period_start < date_trunc('month', now(), 'utc') then 0
        else entitlements.consumed
    end,
    period_start = case
        when entitlements.period_start < date_trunc('month', now(), 'utc') then date_trunc('month', now(), 'utc')
        else entitlements.period_start
    end,
    updated_at = now();
`

// QReserveUnit is the atomic check-and-increment. The guarded update either
// consumes one unit or matches no row; it never leaves consumed above quota
// for the free tier.
const QReserveUnit = `--sql eac0844e-1aa6-46e5-ad8e-79f0cfbf264f
update entitlements
set consumed = consumed + 1,
    updated_at = now()
where user_id = $1::uuid
  and (tier = 'pro' or consumed < quota)
returning tier, quota, consumed, period_start;
`

// QSelectEntitlement reads the current state rollover-aware without writing.
const QSelectEntitlement = `--sql 6896721a-758f-4342-818d-c22650a0c577
select tier,
       quota,
       case when period_start < date_trunc('month', now(), 'utc') then 0 else consumed end as consumed,
       greatest(period_start, date_trunc('month', now(), 'utc')) as period_start
from entitlements
where user_id = $1::uuid;
`

// QUpgradeTier applies a tier change. The where clause makes repeat upgrades
// a no-op and refuses implicit downgrades: only a transition to pro writes.
const QUpgradeTier = `--sql 2cf271b5-61c6-416d-8fc4-4cc1dc7dacce
insert into entitlements (user_id, tier, quota, consumed, period_start, upgraded_at, created_at, updated_at)
values ($1::uuid, $2::text, $3::int, 0, date_trunc('month', now(), 'utc'), $4::timestamptz, now(), now())
on conflict (user_id) do update set
    tier = excluded.tier,
    upgraded_at = excluded.upgraded_at,
    updated_at = now()
where entitlements.tier is distinct from excluded.tier
  and excluded.tier = 'pro';
`
