package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/reportlens/reportlens/internal/http/middleware"
	"github.com/reportlens/reportlens/internal/reports"
	"github.com/reportlens/reportlens/internal/trends"
	"github.com/reportlens/reportlens/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ReportsHandler     *reports.Handler
	TrendsHandler      *trends.Handler
	MetricsHandler     http.Handler
	AuthJWTSecret      string
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst, cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Authenticated API
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.UserJWT(cfg.AuthJWTSecret))

		api.Route("/reports", func(r chi.Router) {
			r.Post("/", cfg.ReportsHandler.Analyze)
			r.Get("/", cfg.ReportsHandler.List)
			r.Route("/{reportID}", func(r chi.Router) {
				r.Get("/", cfg.ReportsHandler.Get)
				r.Delete("/", cfg.ReportsHandler.Delete)
				if cfg.TrendsHandler != nil {
					r.Get("/by-date", cfg.TrendsHandler.GroupReportByDate)
				}
			})
		})

		if cfg.TrendsHandler != nil {
			api.Get("/trends/{testName}", cfg.TrendsHandler.GetTrend)
		}

		api.Get("/stats", cfg.ReportsHandler.GetStats)
	})

	return r
}
