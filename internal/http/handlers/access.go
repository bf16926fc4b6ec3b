package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fitroom/internal/domain"
	"fitroom/internal/storage"
	"fitroom/internal/telemetry"
)

// jobForRead resolves a job for the read-side endpoints and enforces the
// access contract: unknown ids are 404, foreign jobs are 403, and existence
// is always checked before ownership so a foreign caller probing a missing id
// learns nothing. Jobs without an artifact read as not found.
func (a *App) jobForRead(w http.ResponseWriter, r *http.Request) (*domain.Job, bool) {
	id := a.currentIdentity(w, r)
	if id == nil {
		return nil, false
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "invalid_input", "job_id is required")
		return nil, false
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
		} else {
			a.Logger.Error().Err(err).Str("job_id", jobID).Msg("load job")
			a.error(w, http.StatusInternalServerError, "internal", nil)
		}
		return nil, false
	}
	if job.OwnerID != id.ID {
		a.error(w, http.StatusForbidden, "forbidden", nil)
		return nil, false
	}
	if !job.HasArtifact() {
		a.error(w, http.StatusNotFound, "not_found", "no result available")
		return nil, false
	}
	return job, true
}

// ViewJob returns the job record with a fresh signed URL for its artifact.
func (a *App) ViewJob(w http.ResponseWriter, r *http.Request) {
	job, ok := a.jobForRead(w, r)
	if !ok {
		return
	}
	signed, err := a.Store.SignGetURL(r.Context(), storage.BucketPreviews, job.ArtifactRef, a.Config.SignedURLTTL())
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("sign artifact url")
		a.error(w, http.StatusInternalServerError, "storage_failed", nil)
		return
	}
	telemetry.SignedURLsIssued.Inc()
	a.json(w, http.StatusOK, map[string]any{
		"success":    true,
		"job":        job,
		"signed_url": signed.URL,
		"expires_at": signed.ExpiresAt,
	})
}

// PreviewJob proxies the raw artifact bytes for inline rendering. The
// response is marked non-cacheable so access control is re-run on every view.
func (a *App) PreviewJob(w http.ResponseWriter, r *http.Request) {
	job, ok := a.jobForRead(w, r)
	if !ok {
		return
	}
	data, mime, err := a.Store.Get(r.Context(), storage.BucketPreviews, job.ArtifactRef)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("read artifact")
		a.error(w, http.StatusInternalServerError, "storage_failed", nil)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("write artifact bytes")
	}
}

// DownloadJob serves the artifact as a file attachment. The filename is
// derived from the download time, not the job, matching how exports are
// named elsewhere in the product.
func (a *App) DownloadJob(w http.ResponseWriter, r *http.Request) {
	job, ok := a.jobForRead(w, r)
	if !ok {
		return
	}
	data, mime, err := a.Store.Get(r.Context(), storage.BucketPreviews, job.ArtifactRef)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("read artifact")
		a.error(w, http.StatusInternalServerError, "storage_failed", nil)
		return
	}
	filename := fmt.Sprintf("fitroom-%s.png", a.now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("write artifact bytes")
	}
}

// ShareJob mints a fresh signed URL suitable for handing to a third party.
// The URL expires on the process-wide TTL; sharing grants no API access.
func (a *App) ShareJob(w http.ResponseWriter, r *http.Request) {
	job, ok := a.jobForRead(w, r)
	if !ok {
		return
	}
	ttl := a.Config.SignedURLTTL()
	signed, err := a.Store.SignGetURL(r.Context(), storage.BucketPreviews, job.ArtifactRef, ttl)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("sign artifact url")
		a.error(w, http.StatusInternalServerError, "storage_failed", nil)
		return
	}
	telemetry.SignedURLsIssued.Inc()
	a.json(w, http.StatusOK, map[string]any{
		"success":     true,
		"job_id":      job.ID,
		"signed_url":  signed.URL,
		"expires_at":  signed.ExpiresAt,
		"valid_for_s": int64(ttl / time.Second),
	})
}
