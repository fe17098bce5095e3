package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dekoassistant/internal/http/handlers"
	"dekoassistant/internal/middleware"
	"dekoassistant/internal/observability/metrics"
)

// Options carries the cross-cutting pieces the router wires around the
// handlers.
type Options struct {
	Logger          zerolog.Logger
	Metrics         *metrics.Metrics
	Progress        http.Handler
	StaticDir       string
	CORSOrigins     []string
	RateLimitPerMin int
	JWTSecret       string
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
		opts.Metrics.Middleware,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.OptionalJWT(opts.JWTSecret),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/v1/design", app.Design)
		r.Post("/v1/visualizations", app.Visualize)
	})
	if opts.Progress != nil {
		r.Get("/v1/ws", opts.Progress.ServeHTTP)
	}
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	return r
}

// LocaleOf is the locale resolver handed to the progress endpoint. It reads
// the value the I18N middleware stored on the request.
func LocaleOf(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context())
}
