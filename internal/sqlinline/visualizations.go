package sqlinline

const QInsertVisualization = `--sql 165ab14a-a3d9-4e65-a544-9eb20f306a16
insert into visualizations(
  mood_board_id,
  design_id,
  user_id,
  storage_key,
  image_url,
  prompt,
  model,
  success,
  fallback,
  error_message,
  generated_at
) values (
  $1::uuid,
  nullif($2::text, '')::uuid,
  nullif($3::text, ''),
  $4::text,
  $5::text,
  $6::text,
  $7::text,
  $8::boolean,
  $9::boolean,
  nullif($10::text, ''),
  $11::timestamptz
);
`

const QSelectVisualizationByID = `--sql 766860b1-6179-4132-a7da-b30dc7a25c4a
select
  mood_board_id::text,
  coalesce(design_id::text, ''),
  coalesce(user_id, ''),
  storage_key,
  image_url,
  prompt,
  model,
  success,
  fallback,
  coalesce(error_message, ''),
  generated_at
from visualizations
where mood_board_id = $1::uuid
limit 1;
`
