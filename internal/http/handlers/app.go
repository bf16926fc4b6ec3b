package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"fitroom/internal/domain"
	"fitroom/internal/identity"
	"fitroom/internal/infra"
	"fitroom/internal/middleware"
	"fitroom/internal/providers/tryon"
	"fitroom/internal/retry"
	"fitroom/internal/storage"
)

// App carries the dependencies shared by all HTTP handlers.
type App struct {
	Config    *infra.Config
	Logger    zerolog.Logger
	Jobs      domain.JobRepository
	Metrics   domain.MetricsRepository
	Store     storage.ObjectStore
	Generator tryon.Generator
	Retry     retry.Policy

	now func() time.Time
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, jobs domain.JobRepository, metrics domain.MetricsRepository, store storage.ObjectStore, gen tryon.Generator, pol retry.Policy) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Jobs:      jobs,
		Metrics:   metrics,
		Store:     store,
		Generator: gen,
		Retry:     pol,
		now:       time.Now,
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Logger.Error().Err(err).Msg("write json response")
	}
}

func (a *App) error(w http.ResponseWriter, code int, errCode string, details any) {
	body := map[string]any{"success": false, "error": errCode}
	if details != nil {
		body["details"] = details
	}
	a.json(w, code, body)
}

// currentIdentity returns the authenticated caller, or writes a 401 and
// returns nil. The auth middleware normally guarantees an identity is
// present; this guards handlers mounted outside the chain.
func (a *App) currentIdentity(w http.ResponseWriter, r *http.Request) *identity.Identity {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		a.error(w, http.StatusUnauthorized, "unauthenticated", nil)
		return nil
	}
	return id
}

// recordMetrics appends a metrics row. Metrics persistence never changes
// the caller-visible outcome, so failures are logged and swallowed.
func (a *App) recordMetrics(ctx context.Context, jobID, ownerID string, status domain.JobStatus, duration time.Duration, detail string) {
	rec := &domain.MetricsRecord{
		JobID:      jobID,
		OwnerID:    ownerID,
		Status:     status,
		DurationMS: duration.Milliseconds(),
		Detail:     detail,
		CreatedAt:  a.now(),
	}
	if err := a.Metrics.Append(ctx, rec); err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("append job metrics")
	}
}
