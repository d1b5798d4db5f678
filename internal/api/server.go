package api

import (
	"log/slog"
	"net/http"

	"github.com/davidriles/folio/internal/config"
	"github.com/davidriles/folio/internal/pipeline"
	"github.com/davidriles/folio/internal/summarize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for folio.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *summarize.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil when no
// summarizer is configured.
func NewServer(orch *pipeline.Orchestrator, stats *summarize.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/books", s.handleAddBook)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/summarizer", s.handleSummarizerStats)

		r.Get("/api/books", s.handleListBooks)
		r.Get("/api/books/{bookID}", s.handleGetBook)
		r.Delete("/api/books/{bookID}", s.handleDeleteBook)
		r.Get("/api/books/{bookID}/chapters/{index}", s.handleGetChapter)
		r.Get("/api/books/{bookID}/position", s.handleGetPosition)
		r.Put("/api/books/{bookID}/position", s.handleSetPosition)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
