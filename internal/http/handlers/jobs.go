package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fitroom/internal/domain"
	"fitroom/internal/middleware"
	"fitroom/internal/providers/tryon"
	"fitroom/internal/storage"
	"fitroom/internal/telemetry"
)

type submitJobRequest struct {
	SubjectPath string   `json:"subject_path"`
	ItemPaths   []string `json:"item_paths"`
}

type submitJobResponse struct {
	Success    bool             `json:"success"`
	JobID      string           `json:"job_id"`
	Status     domain.JobStatus `json:"status"`
	SignedURL  string           `json:"signed_url"`
	ExpiresAt  time.Time        `json:"expires_at"`
	DurationMS int64            `json:"duration_ms"`
}

// SubmitJob runs one try-on submission end to end: ownership check on the
// input refs, generation under the retry policy, artifact persistence, and a
// first signed URL for the result. One metrics row is appended per outcome;
// the job row itself is written only for completed outcomes.
func (a *App) SubmitJob(w http.ResponseWriter, r *http.Request) {
	id := a.currentIdentity(w, r)
	if id == nil {
		return
	}
	started := a.now()
	ctx := r.Context()

	var req submitJobRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}
	if req.SubjectPath == "" {
		a.error(w, http.StatusBadRequest, "invalid_input", "subject_path is required")
		return
	}
	if len(req.ItemPaths) > domain.MaxItemRefs {
		a.error(w, http.StatusBadRequest, "invalid_input", "too many item paths")
		return
	}

	jobID := uuid.NewString()

	// record writes the single metrics row this invocation is allowed.
	metricsDone := false
	record := func(status domain.JobStatus, detail string) {
		metricsDone = true
		a.recordMetrics(ctx, jobID, id.ID, status, a.now().Sub(started), detail)
		telemetry.SubmissionsTotal.WithLabelValues(string(status)).Inc()
	}
	// A panic past this point still leaves a metrics row behind; the
	// recoverer middleware turns it into the JSON 500.
	defer func() {
		if rec := recover(); rec != nil {
			if !metricsDone {
				record(domain.StatusError, fmt.Sprintf("panic: %v", rec))
			}
			panic(rec)
		}
	}()

	// Every input ref must live under the caller's namespace. This is checked
	// before any backend call; a single foreign ref denies the whole request.
	for _, ref := range append([]string{req.SubjectPath}, req.ItemPaths...) {
		if !domain.OwnsRef(id.ID, ref) {
			record(domain.StatusDenied, "input ref outside owner namespace")
			a.error(w, http.StatusForbidden, "forbidden", "input does not belong to the caller")
			return
		}
	}

	genReq := tryon.Request{
		JobID:      jobID,
		OwnerID:    id.ID,
		SubjectRef: req.SubjectPath,
		ItemRefs:   req.ItemPaths,
		Locale:     middleware.LocaleFromContext(ctx),
	}
	// fail records the error outcome and answers 500. No job row is written
	// for failed submissions.
	fail := func(code string, err error) {
		a.Logger.Error().Err(err).Str("job_id", jobID).Str("owner_id", id.ID).Msg(code)
		record(domain.StatusError, err.Error())
		a.error(w, http.StatusInternalServerError, code, err.Error())
	}

	var result *tryon.Result
	err := a.Retry.Do(ctx, func(ctx context.Context) error {
		res, genErr := a.Generator.Generate(ctx, genReq)
		if genErr != nil {
			return genErr
		}
		result = res
		return nil
	})
	if err != nil {
		fail("generation_failed", err)
		return
	}
	telemetry.GenerationSeconds.Observe(a.now().Sub(started).Seconds())

	artifactRef := id.ID + "/" + jobID + ".png"
	if err := a.Store.Put(ctx, storage.BucketPreviews, artifactRef, result.Data, result.MIME); err != nil {
		fail("storage_failed", err)
		return
	}
	// Re-check that the object landed; a successful Put with a missing object
	// means the store is lying and the job must not be recorded as completed.
	ok, err := a.Store.Exists(ctx, storage.BucketPreviews, artifactRef)
	if err == nil && !ok {
		err = storage.ErrObjectMissing
	}
	if err != nil {
		fail("storage_failed", err)
		return
	}

	signed, err := a.Store.SignGetURL(ctx, storage.BucketPreviews, artifactRef, a.Config.SignedURLTTL())
	if err != nil {
		fail("storage_failed", err)
		return
	}
	telemetry.SignedURLsIssued.Inc()

	status := domain.StatusCompleted
	if result.Stub {
		status = domain.StatusCompletedStub
	}
	duration := a.now().Sub(started)

	job := &domain.Job{
		ID:          jobID,
		OwnerID:     id.ID,
		SubjectRef:  req.SubjectPath,
		ItemRefs:    req.ItemPaths,
		ArtifactRef: artifactRef,
		Status:      status,
		DurationMS:  duration.Milliseconds(),
		CreatedAt:   started,
	}
	// The artifact already exists and the caller gets a working URL either
	// way, so a failed row insert degrades to a log line rather than a 500.
	if err := a.Jobs.Create(ctx, job); err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("persist job row")
	}
	record(status, "")

	a.json(w, http.StatusOK, submitJobResponse{
		Success:    true,
		JobID:      jobID,
		Status:     status,
		SignedURL:  signed.URL,
		ExpiresAt:  signed.ExpiresAt,
		DurationMS: duration.Milliseconds(),
	})
}
