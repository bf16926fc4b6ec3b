package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fitroom/internal/http/handlers"
	"fitroom/internal/identity"
	"fitroom/internal/infra"
	"fitroom/internal/middleware"
	"fitroom/internal/storage"
	"fitroom/internal/telemetry"
)

// Options carries the router dependencies that are not part of the App
// container.
type Options struct {
	Config   *infra.Config
	Verifier identity.Verifier
	// Country resolves a client IP to an ISO country code; nil disables
	// geo-aware locale detection.
	Country middleware.CountryLookup
	// SignedFiles serves locally signed artifact URLs when the local storage
	// driver is active; nil leaves the route unmounted.
	SignedFiles *storage.FileStore
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP)
	r.Use(middleware.Recoverer(app.Logger))
	r.Use(middleware.CORS(opts.Config.AllowedOrigins))
	r.Use(middleware.I18N("en", opts.Country))
	r.Use(middleware.RateLimit(opts.Config.RateLimitPerMin, time.Minute))
	r.Use(middleware.Logger(app.Logger))

	r.Get("/v1/healthz", app.Health)
	r.Method(stdhttp.MethodGet, "/metrics", telemetry.Handler())

	if opts.SignedFiles != nil {
		r.Get("/signed/{bucket}/*", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			opts.SignedFiles.ServeSigned(w, req, chi.URLParam(req, "bucket"), chi.URLParam(req, "*"))
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(opts.Verifier))

		r.Post("/v1/uploads/prepare", app.PrepareUploads)

		r.Route("/v1/jobs", func(r chi.Router) {
			r.Post("/", app.SubmitJob)
			r.Get("/{job_id}", app.ViewJob)
			r.Post("/{job_id}/preview", app.PreviewJob)
			r.Get("/{job_id}/download", app.DownloadJob)
			r.Post("/{job_id}/share", app.ShareJob)
		})
	})

	return r
}
