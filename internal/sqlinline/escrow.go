package sqlinline

const QInsertEscrowEvent = `--sql 41a5d9fe-e6d3-480c-af88-d23265df6652
insert into escrow_events(id, project_id, seq, event_type, payload, occurred_at)
values ($1::uuid, $2::uuid, $3::int, $4::text, coalesce($5::jsonb, '{}'::jsonb), $6::timestamptz)
on conflict (project_id, seq) do nothing;
`

const QListEscrowEvents = `--sql 25cf3980-4612-449c-b4de-f95628fe923c
select id::text, project_id::text, seq, event_type, payload::text, occurred_at
from escrow_events
where project_id = $1::uuid
order by seq asc
limit $2::int;
`
