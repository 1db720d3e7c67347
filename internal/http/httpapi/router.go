package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"opencure/internal/http/handlers"
	"opencure/internal/middleware"
)

// Options configures the middleware chain.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// RateLimitPerMin of zero disables rate limiting.
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	Logger          zerolog.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N("en", opts.CountryLookup),
		middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
		r.Get("/stats", app.StatsSummary)

		// Reads are public.
		r.Get("/projects", app.ProjectsList)
		r.Get("/projects/{id}", app.ProjectsGet)
		r.Get("/projects/{id}/donors", app.DonorsList)
		r.Get("/projects/{id}/events", app.EventsList)
		r.Get("/projects/{id}/milestones", app.MilestonesList)
		r.Get("/projects/{id}/milestones/{mid}", app.MilestonesGet)
		r.Get("/token/balances/{address}", app.TokenBalance)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret))

			r.Post("/projects", app.ProjectsCreate)
			r.Post("/projects/{id}/donations", app.DonationsCreate)
			r.Post("/projects/{id}/refunds", app.RefundsCreate)
			r.Post("/projects/{id}/fail", app.ProjectFail)
			r.Post("/projects/{id}/pause", app.ProjectPause)
			r.Post("/projects/{id}/unpause", app.ProjectUnpause)
			r.Put("/projects/{id}/beneficiary", app.BeneficiaryUpdate)

			r.Post("/projects/{id}/milestones", app.MilestonesCreate)
			r.Post("/projects/{id}/milestones/{mid}/complete", app.MilestoneComplete)
			r.Post("/projects/{id}/milestones/{mid}/votes", app.MilestoneVote)
			r.Post("/projects/{id}/milestones/{mid}/release", app.MilestoneRelease)

			r.Post("/token/approve", app.TokenApprove)
			r.Post("/token/mint", app.TokenMint)
		})
	})

	return r
}
