package sqlinline

const QInsertSavedSpell = `--sql 53ef30cd-4d10-4f40-a3cd-7b1079e3b098
insert into saved_spells (id, user_id, title, persona_id, persona_name, artifact, image_b64, created_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::jsonb, $7::text, now())
returning id;
`

const QListSavedSpells = `--sql 4c6355d6-1187-4e2f-894e-fe28371bd3dd
select id, title, persona_id, persona_name, artifact, image_b64, created_at
from saved_spells
where user_id = $1::uuid
order by created_at desc;
`

const QDeleteSavedSpell = `--sql 05060485-360f-4c33-b359-bd6211adfe74
delete from saved_spells
where id = $1::uuid
  and user_id = $2::uuid;
`
