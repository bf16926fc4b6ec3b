package sqlinline

const QInsertJobMetrics = `--sql 99fb295f-9d25-4830-88f9-b20dd2935ef0
insert into job_metrics (job_id, owner_id, status, duration_ms, detail, created_at)
values ($1, $2, $3, $4, $5, $6)`
