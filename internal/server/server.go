package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/healthvault/internal/archive"
	"github.com/claude/healthvault/internal/ingest"
	"github.com/claude/healthvault/internal/query"
	"github.com/claude/healthvault/internal/score"
	"github.com/claude/healthvault/internal/store"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *store.DB
	queries  *query.Router
	ingest   *ingest.Provider
	exporter *archive.Exporter
	scorer   *score.Scorer
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *store.DB, queries *query.Router, ingestProvider *ingest.Provider, exporter *archive.Exporter, scorer *score.Scorer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		queries:  queries,
		ingest:   ingestProvider,
		exporter: exporter,
		scorer:   scorer,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/ingest", s.handleIngest)
		r.Post("/api/v1/export", s.handleExport)
	})

	// Query endpoints (no auth — tsnet handles access)
	s.router.Post("/api/v1/query", s.handleQuery)
	s.router.Get("/api/v1/metrics", s.handleAvailableMetrics)
	s.router.Get("/api/v1/range", s.handleDateRange)
	s.router.Get("/api/v1/completeness", s.handleCompleteness)
}
