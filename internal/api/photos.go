package api

import (
	"net/http"

	"github.com/erazemk/zbirka/internal/catalog"
)

// PhotosHandler handles gallery photo endpoints.
type PhotosHandler struct {
	Gallery        *catalog.GalleryService
	MaxUploadBytes int64
}

// List handles GET /api/collections/items/{id}/photos.
func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	photos, err := h.Gallery.ListPhotos(r.Context(), itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, photos)
}

// Upload handles POST /api/collections/items/{id}/photos.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	blob, err := readUpload(r, "photo")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if blob == nil {
		jsonError(w, http.StatusBadRequest, "photo required")
		return
	}

	photo, err := h.Gallery.AddPhoto(r.Context(), itemID, *blob)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, photo)
}

// Get handles GET /api/collections/items/{id}/photos/{pid}.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}
	photoID, ok := pathID(w, r, "pid", "photo")
	if !ok {
		return
	}

	blob, err := h.Gallery.Photo(r.Context(), itemID, photoID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveImage(w, r, blob)
}

// Delete handles DELETE /api/collections/items/{id}/photos/{pid}.
func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}
	photoID, ok := pathID(w, r, "pid", "photo")
	if !ok {
		return
	}

	if err := h.Gallery.DeletePhoto(r.Context(), itemID, photoID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo deleted"})
}
