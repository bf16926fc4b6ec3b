package domain

import "time"

// JobStatus enumerates terminal job outcomes. A job row is written exactly
// once, after the outcome is known, so there is no in-progress status.
type JobStatus string

const (
	// StatusCompleted marks a job whose artifact came from the live
	// generation backend.
	StatusCompleted JobStatus = "completed"
	// StatusCompletedStub marks a job whose artifact came from the
	// deterministic stub backend. Downstream consumers branch on this, so
	// the distinction is preserved end to end.
	StatusCompletedStub JobStatus = "completed_stub"
	// StatusDenied marks a submission rejected by the input ownership check.
	StatusDenied JobStatus = "denied"
	// StatusError marks a submission that failed in generation or storage.
	StatusError JobStatus = "error"
)

// MaxItemRefs caps the number of item images per submission.
const MaxItemRefs = 3

// Job is the single persistent entity: one try-on request/result pair.
// Rows are immutable after insert.
type Job struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	SubjectRef  string    `json:"subject_ref"`
	ItemRefs    []string  `json:"item_refs"`
	ArtifactRef string    `json:"artifact_ref,omitempty"`
	Status      JobStatus `json:"status"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasArtifact reports whether generation produced a stored result.
func (j *Job) HasArtifact() bool {
	return j != nil && j.ArtifactRef != ""
}

// MetricsRecord is an append-only observability row, written once per
// submission attempt whether or not a job row was also written. It has no
// read API.
type MetricsRecord struct {
	JobID      string
	OwnerID    string
	Status     JobStatus
	DurationMS int64
	Detail     string
	CreatedAt  time.Time
}
