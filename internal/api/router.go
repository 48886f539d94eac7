package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/zbirka/internal/catalog"
)

// RouterConfig carries the transport settings of the API.
type RouterConfig struct {
	MaxUploadBytes int64
	CORSOrigins    []string
}

// NewRouter creates the API router with all endpoints registered and the
// middleware chain applied.
func NewRouter(db *sql.DB, cfg RouterConfig) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}

	mux := http.NewServeMux()

	collections := catalog.NewCollectionService(db)
	healthHandler := &HealthHandler{DB: db}
	collectionsHandler := &CollectionsHandler{Collections: collections, MaxUploadBytes: cfg.MaxUploadBytes}
	itemsHandler := &ItemsHandler{Items: catalog.NewItemService(db), MaxUploadBytes: cfg.MaxUploadBytes}
	photosHandler := &PhotosHandler{Gallery: catalog.NewGalleryService(db), MaxUploadBytes: cfg.MaxUploadBytes}
	categoriesHandler := &CategoriesHandler{Categories: catalog.NewCategoryService(db)}

	mux.HandleFunc("GET /api/health", healthHandler.Check)

	// Collections.
	mux.HandleFunc("GET /api/collections", collectionsHandler.List)
	mux.HandleFunc("POST /api/collections", collectionsHandler.Create)
	mux.HandleFunc("POST /api/collections/import", collectionsHandler.Import)
	mux.HandleFunc("GET /api/collections/{id}", collectionsHandler.Get)
	mux.HandleFunc("PUT /api/collections/{id}", collectionsHandler.Update)
	mux.HandleFunc("DELETE /api/collections/{id}", collectionsHandler.Delete)
	mux.HandleFunc("PUT /api/collections/{id}/description", collectionsHandler.UpdateDescription)
	mux.HandleFunc("GET /api/collections/{id}/value", collectionsHandler.Value)
	mux.HandleFunc("GET /api/collections/{id}/export", collectionsHandler.Export)

	// Items.
	mux.HandleFunc("GET /api/collections/{id}/items", itemsHandler.List)
	mux.HandleFunc("POST /api/collections/{id}/items", itemsHandler.Create)
	mux.HandleFunc("PUT /api/collections/{cid}/items/{iid}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/collections/{cid}/items/{iid}", itemsHandler.Delete)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/collections/items/{id}/image", itemsHandler.GetImage)

	// Gallery photos.
	mux.HandleFunc("GET /api/collections/items/{id}/photos", photosHandler.List)
	mux.HandleFunc("POST /api/collections/items/{id}/photos", photosHandler.Upload)
	mux.HandleFunc("GET /api/collections/items/{id}/photos/{pid}", photosHandler.Get)
	mux.HandleFunc("DELETE /api/collections/items/{id}/photos/{pid}", photosHandler.Delete)

	// Categories.
	mux.HandleFunc("GET /api/collections/{id}/categories", categoriesHandler.List)
	mux.HandleFunc("POST /api/collections/{id}/categories", categoriesHandler.Create)
	mux.HandleFunc("PUT /api/collections/{cid}/categories/{catid}", categoriesHandler.Rename)
	mux.HandleFunc("DELETE /api/collections/{cid}/categories/{catid}", categoriesHandler.Delete)
	mux.HandleFunc("GET /api/items/{id}/categories", categoriesHandler.ListForItem)
	mux.HandleFunc("POST /api/items/{id}/categories/{catid}", categoriesHandler.Assign)
	mux.HandleFunc("DELETE /api/items/{id}/categories/{catid}", categoriesHandler.Unassign)

	var handler http.Handler = mux
	if len(cfg.CORSOrigins) > 0 {
		handler = CORS(cfg.CORSOrigins)(handler)
	}
	handler = Recoverer(handler)
	handler = LoggingMiddleware(handler)
	return RequestID(handler)
}
