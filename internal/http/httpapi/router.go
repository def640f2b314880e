package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"graphgen/internal/http/handlers"
	"graphgen/internal/infra"
	"graphgen/internal/middleware"
)

// Options configures the middleware stack.
type Options struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/readyz", app.Ready)
	r.Get("/v1/stats", app.StatsSummary)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Route("/v1/generation", func(r chi.Router) {
		r.Get("/", app.GetGeneration)
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/", app.SubmitGeneration)
		r.Delete("/", app.ResetGeneration)
	})

	return r
}
