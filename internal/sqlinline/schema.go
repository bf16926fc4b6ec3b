package sqlinline

// Schema statements are idempotent so startup can apply them unconditionally.
var Schema = []string{
	`--sql 7aca955f-58b1-4135-965d-08add5b3c5b2
create table if not exists jobs (
  id           text primary key,
  owner_id     text not null,
  subject_ref  text not null,
  item_refs    text[] not null default '{}',
  artifact_ref text,
  status       text not null,
  duration_ms  bigint not null default 0,
  created_at   timestamptz not null default now()
)`,
	`--sql 69d8f693-4fd7-4adf-a59c-fd45335ea55d
create index if not exists idx_jobs_owner on jobs (owner_id, created_at desc)`,
	`--sql f5b3cfbd-16f5-4aa8-971e-260b3df25c6d
create table if not exists job_metrics (
  id          bigserial primary key,
  job_id      text not null,
  owner_id    text not null,
  status      text not null,
  duration_ms bigint not null default 0,
  detail      text not null default '',
  created_at  timestamptz not null default now()
)`,
}
