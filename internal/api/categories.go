package api

import (
	"net/http"

	"github.com/erazemk/zbirka/internal/catalog"
)

// CategoriesHandler handles category and assignment endpoints.
type CategoriesHandler struct {
	Categories *catalog.CategoryService
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/collections/{id}/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	categories, err := h.Categories.List(r.Context(), collectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Create handles POST /api/collections/{id}/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Categories.Create(r.Context(), collectionID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

// Rename handles PUT /api/collections/{cid}/categories/{catid}.
func (h *CategoriesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := pathID(w, r, "cid", "collection")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "catid", "category")
	if !ok {
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Categories.Rename(r.Context(), collectionID, id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /api/collections/{cid}/categories/{catid}.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := pathID(w, r, "cid", "collection")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "catid", "category")
	if !ok {
		return
	}

	if err := h.Categories.Delete(r.Context(), collectionID, id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListForItem handles GET /api/items/{id}/categories.
func (h *CategoriesHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	categories, err := h.Categories.ListForItem(r.Context(), itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Assign handles POST /api/items/{id}/categories/{catid}.
func (h *CategoriesHandler) Assign(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "catid", "category")
	if !ok {
		return
	}

	if err := h.Categories.Assign(r.Context(), itemID, categoryID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category assigned"})
}

// Unassign handles DELETE /api/items/{id}/categories/{catid}.
func (h *CategoriesHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "catid", "category")
	if !ok {
		return
	}

	if err := h.Categories.Unassign(r.Context(), itemID, categoryID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category removed"})
}
