package api

import (
	"fmt"
	"net/http"

	"github.com/erazemk/zbirka/internal/catalog"
)

// CollectionsHandler handles collection endpoints.
type CollectionsHandler struct {
	Collections    *catalog.CollectionService
	MaxUploadBytes int64
}

type updateDescriptionRequest struct {
	Description string `json:"description"`
}

// List handles GET /api/collections.
func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	collections, err := h.Collections.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, collections)
}

// Create handles POST /api/collections.
func (h *CollectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalog.NewCollection
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Collections.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}

// Get handles GET /api/collections/{id}.
func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	c, err := h.Collections.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Update handles PUT /api/collections/{id}.
func (h *CollectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	var req catalog.CollectionUpdate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Collections.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// UpdateDescription handles PUT /api/collections/{id}/description.
func (h *CollectionsHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	var req updateDescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Collections.UpdateDescription(r.Context(), id, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /api/collections/{id}.
func (h *CollectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	if err := h.Collections.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "collection deleted"})
}

// Value handles GET /api/collections/{id}/value.
func (h *CollectionsHandler) Value(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	v, err := h.Collections.Value(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, v)
}

// Export handles GET /api/collections/{id}/export.
func (h *CollectionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	archive, err := h.Collections.Export(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="collection-%d.json"`, id))
	jsonResponse(w, http.StatusOK, archive)
}

// Import handles POST /api/collections/import.
func (h *CollectionsHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	var archive catalog.Archive
	if err := decodeJSON(r, &archive); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid archive")
		return
	}

	c, err := h.Collections.Import(r.Context(), &archive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, c)
}
