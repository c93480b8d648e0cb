package sqlinline

const QInsertPaymentSession = `--sql 9539fb80-788d-4247-b07c-dd7bb70e946c
insert into payment_sessions (id, user_id, status, return_url, created_at, updated_at)
values ($1::text, $2::uuid, 'pending', $3::text, now(), now());
`

const QSelectPaymentSession = `--sql 3281d375-5123-49c9-ae29-ef7502ceb76d
select id, user_id, status, return_url, created_at, updated_at
from payment_sessions
where id = $1::text;
`

// QMarkPaymentSession records a terminal status. The status guard keeps
// transitions monotonic: a session that already reached a terminal state is
// never rewritten.
const QMarkPaymentSession = `--sql 1f3ebf34-1864-4baf-a30a-bd80ac6f2a32
update payment_sessions
set status = $2::text,
    updated_at = now()
where id = $1::text
  and status = 'pending';
`

// QSelectPendingSessions feeds the out-of-band reconciler. Sessions older
// than two days are left for manual reconciliation.
const QSelectPendingSessions = `--sql 3c87b956-ced7-4d9c-b87e-6fffaac8c42c
select id
from payment_sessions
where status = 'pending'
  and created_at > now() - interval '2 days'
order by created_at
limit $1::int;
`
