package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/readback-check/internal/config"
	"github.com/yegors/readback-check/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     config.ServerConfig
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(handler *Handler, cfg config.ServerConfig, logger *logger.Logger) *Router {
	return &Router{
		handler:    handler,
		middleware: NewMiddleware(logger),
		config:     cfg,
		logger:     logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.CORSAllowedOrigins))
	router.Use(r.middleware.LimitBody)

	router.Route("/api/v1", func(router chi.Router) {
		// Analysis routes
		router.Post("/analyze", r.handler.Analyze)
		router.Post("/transcripts/analyze", r.handler.AnalyzeTranscript)
		router.Post("/evaluate", r.handler.Evaluate)

		// Session history routes
		router.Get("/sessions/{id}/history", r.handler.GetSessionHistory)
		router.Delete("/sessions/{id}", r.handler.DeleteSession)
		router.Get("/aircraft/{callsign}/history", r.handler.GetAircraftHistory)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}
