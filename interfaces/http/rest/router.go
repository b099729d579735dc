package rest

import (
	"encoding/json"
	"net/http"

	"product-search/interfaces/http/rest/handlers"
	"product-search/interfaces/http/rest/middleware"
	"product-search/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	searcher   handlers.Searcher
	collector  *observability.Collector
	logger     *zap.Logger
	enableCORS bool
}

// NewRouter creates a new router instance. collector may be nil, in which
// case /metrics is not mounted.
func NewRouter(
	searcher handlers.Searcher,
	collector *observability.Collector,
	logger *zap.Logger,
	enableCORS bool,
) *Router {
	return &Router{
		searcher:   searcher,
		collector:  collector,
		logger:     logger,
		enableCORS: enableCORS,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger, rt.collector))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	searchHandler := handlers.NewSearchHandler(rt.searcher, rt.logger)
	router.Get("/search", searchHandler.Search)
	router.Post("/search", searchHandler.Search)

	if rt.collector != nil {
		router.Method(http.MethodGet, "/metrics", rt.collector.Handler())
	}

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, "healthy")
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, "ready")
}

func writeStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
