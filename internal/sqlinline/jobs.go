package sqlinline

const QInsertJob = `--sql 457eb33e-90ea-431f-ab82-154b40a08ce7
insert into jobs (id, owner_id, subject_ref, item_refs, artifact_ref, status, duration_ms, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8)`

const QGetJobByID = `--sql 8afad157-65ed-4bcf-a9b4-f61e16c8ad8b
select id, owner_id, subject_ref, item_refs, artifact_ref, status, duration_ms, created_at
from jobs
where id = $1`
