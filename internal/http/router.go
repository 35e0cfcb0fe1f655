package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"knowledge-api/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Pipeline         handlers.Ingestor
	Engine           handlers.Searcher
	Catalog          handlers.Cataloger
	DB               *sql.DB
	VectorStore      handlers.CollectionChecker
	CollectionName   string
	UseVectorDefault bool
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	uploadHandler := handlers.NewUploadHandler(deps.Pipeline)
	searchHandler := handlers.NewSearchHandler(deps.Engine, deps.UseVectorDefault)
	documentsHandler := handlers.NewDocumentsHandler(deps.Catalog)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Route("/knowledge", func(r chi.Router) {
			r.Method(http.MethodPost, "/upload", uploadHandler)
			r.Method(http.MethodPost, "/search", searchHandler)
			r.Method(http.MethodGet, "/documents", documentsHandler)
		})
	})

	return r
}
