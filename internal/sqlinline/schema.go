package sqlinline

// Schema lists the bootstrap statements in dependency order. Each is
// idempotent.
var Schema = []string{
	`--sql 9ce635cd-0758-4088-b1af-d19ccb40fb31
create table if not exists products (
  id bigserial primary key,
  name text not null,
  category text not null,
  style text,
  color text,
  price numeric(12, 2),
  description text,
  image_path text,
  created_at timestamptz not null default now()
);
`,
	`--sql ce336a84-6a00-414a-8a17-afddb1686ab2
create index if not exists products_category_idx on products (category);
`,
	`--sql e1230504-d14d-4c8e-84c9-d9fa22524416
create table if not exists designs (
  id uuid primary key,
  user_id text,
  room_type text not null,
  design_style text not null,
  title text not null default '',
  description text not null default '',
  hashtags jsonb not null default '{}'::jsonb,
  products jsonb not null default '[]'::jsonb,
  source text not null,
  raw_model_text text not null default '',
  created_at timestamptz not null default now()
);
`,
	`--sql ac1ecf55-af0f-4b2d-bc1a-44244c7b6c34
create table if not exists visualizations (
  mood_board_id uuid primary key,
  design_id uuid,
  user_id text,
  storage_key text not null,
  image_url text not null,
  prompt text not null,
  model text not null,
  success boolean not null,
  fallback boolean not null default false,
  error_message text,
  generated_at timestamptz not null,
  created_at timestamptz not null default now()
);
`,
}
