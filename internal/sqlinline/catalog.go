package sqlinline

// QSearchProducts matches category exactly and, when either is set, style or
// color by substring. $2 and $3 must arrive with LIKE wildcards escaped by a
// backslash. $4 is an optional price ceiling.
const QSearchProducts = `--sql 894fa288-18b4-4c00-8bcc-ef6d6004bb15
select
  id::text,
  name,
  category,
  coalesce(style, ''),
  coalesce(color, ''),
  price::float8,
  coalesce(description, ''),
  coalesce(image_path, '')
from products
where category = $1::text
  and (
    ($2::text = '' and $3::text = '')
    or ($2::text <> '' and style ilike '%' || $2::text || '%' escape '\')
    or ($3::text <> '' and color ilike '%' || $3::text || '%' escape '\')
  )
  and ($4::float8 is null or price <= $4::float8)
order by id
limit $5::int;
`

const QInsertProduct = `--sql f6c329fd-62ad-43a0-9918-f472fa57f158
insert into products(
  name,
  category,
  style,
  color,
  price,
  description,
  image_path
) values (
  $1::text,
  $2::text,
  nullif($3::text, ''),
  nullif($4::text, ''),
  $5::float8,
  nullif($6::text, ''),
  nullif($7::text, '')
) returning id::text;
`

const QDeleteProductsByCategory = `--sql a95af750-c008-4d19-82d1-fdff9352f865
delete from products where category = $1::text;
`
