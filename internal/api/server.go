// Package api serves NDWI points and route evaluations over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/lake-route/internal/config"
	"github.com/sells-group/lake-route/internal/ndwi"
	"github.com/sells-group/lake-route/internal/route"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server holds the dependencies of the HTTP handlers. The index is loaded
// lazily through the loader on the first request that needs it.
type Server struct {
	loader  *ndwi.Loader
	opts    route.Options
	server  config.ServerConfig
	limiter *rate.Limiter
}

// NewServer creates a Server. A zero RateLimitRPS disables rate limiting.
func NewServer(loader *ndwi.Loader, opts route.Options, sc config.ServerConfig) *Server {
	s := &Server{loader: loader, opts: opts, server: sc}
	if sc.RateLimitRPS > 0 {
		burst := sc.RateLimitBurst
		if burst <= 0 {
			burst = int(sc.RateLimitRPS) + 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(sc.RateLimitRPS), burst)
	}
	return s
}

// Routes builds the router with its middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		r.Use(rateLimit(s.limiter))
	}
	if s.server.RequestTimeoutSecs > 0 {
		r.Use(middleware.Timeout(time.Duration(s.server.RequestTimeoutSecs) * time.Second))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Get("/points", s.handlePoints)
		r.Get("/points/nearest", s.handleNearest)
		r.Get("/points/valid", s.handleValid)
		r.Post("/routes/evaluate", s.handleEvaluate)
		r.Post("/routes/evaluate.geojson", s.handleEvaluateGeoJSON)
	})

	return r
}
