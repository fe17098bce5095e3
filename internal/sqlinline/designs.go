package sqlinline

const QInsertDesign = `--sql 4010c005-31c8-4fc0-8592-56b789395a01
insert into designs(
  id,
  user_id,
  room_type,
  design_style,
  title,
  description,
  hashtags,
  products,
  source,
  raw_model_text,
  created_at
) values (
  $1::uuid,
  nullif($2::text, ''),
  $3::text,
  $4::text,
  $5::text,
  $6::text,
  $7::jsonb,
  $8::jsonb,
  $9::text,
  $10::text,
  $11::timestamptz
);
`

const QSelectDesignByID = `--sql f0a85abc-8042-48cc-90e1-0bf82067c602
select
  id::text,
  coalesce(user_id, ''),
  room_type,
  design_style,
  title,
  description,
  hashtags,
  products,
  source,
  raw_model_text,
  created_at
from designs
where id = $1::uuid
limit 1;
`
