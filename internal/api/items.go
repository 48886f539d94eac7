package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/erazemk/zbirka/internal/attrs"
	"github.com/erazemk/zbirka/internal/catalog"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Items          *catalog.ItemService
	MaxUploadBytes int64
}

// itemRequest is the JSON form of an item write. Data is the legacy name of
// Attributes; either may hold an object or an object encoded as a string.
type itemRequest struct {
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Attributes  json.RawMessage `json:"attributes"`
	Data        json.RawMessage `json:"data"`
}

type itemInput struct {
	Title       string
	Type        string
	Description string
	Attributes  attrs.Attributes
	Cover       *model.Blob
}

// List handles GET /api/collections/{id}/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	items, err := h.Items.List(r.Context(), collectionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/collections/{id}/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := pathID(w, r, "id", "collection")
	if !ok {
		return
	}

	in, err := h.readItem(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Items.Create(r.Context(), collectionID, catalog.NewItem{
		Title:       in.Title,
		Type:        in.Type,
		Description: in.Description,
		Attributes:  in.Attributes,
		Cover:       in.Cover,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	item, err := h.Items.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/collections/{cid}/items/{iid}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := pathID(w, r, "cid", "collection")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "iid", "item")
	if !ok {
		return
	}

	in, err := h.readItem(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.Items.Update(r.Context(), collectionID, id, catalog.ItemUpdate{
		Title:       in.Title,
		Description: in.Description,
		Attributes:  in.Attributes,
		Cover:       in.Cover,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/collections/{cid}/items/{iid}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collectionID, ok := pathID(w, r, "cid", "collection")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "iid", "item")
	if !ok {
		return
	}

	if err := h.Items.Delete(r.Context(), collectionID, id); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// GetImage handles GET /api/collections/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	blob, err := h.Items.Image(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	serveImage(w, r, blob)
}

// readItem reads an item write from either a JSON or a multipart body.
func (h *ItemsHandler) readItem(w http.ResponseWriter, r *http.Request) (*itemInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readItemForm(r, h.MaxUploadBytes)
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, &catalog.ValidationError{Field: "body", Reason: "invalid request body"}
	}

	raw := req.Attributes
	if len(raw) == 0 {
		raw = req.Data
	}
	a, err := parseAttributes(string(raw))
	if err != nil {
		return nil, err
	}

	return &itemInput{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Attributes:  a,
	}, nil
}

func readItemForm(r *http.Request, maxBytes int64) (*itemInput, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, &catalog.ValidationError{Field: "body", Reason: "file too large or invalid multipart form"}
	}

	text := r.FormValue("attributes")
	if text == "" {
		text = r.FormValue("data")
	}
	a, err := parseAttributes(text)
	if err != nil {
		return nil, err
	}

	cover, err := readUpload(r, "coverImage")
	if err != nil {
		return nil, err
	}

	return &itemInput{
		Title:       r.FormValue("title"),
		Type:        r.FormValue("type"),
		Description: r.FormValue("description"),
		Attributes:  a,
		Cover:       cover,
	}, nil
}

func parseAttributes(text string) (attrs.Attributes, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		return attrs.Attributes{}, nil
	}
	a, err := attrs.Parse(text)
	if err != nil {
		return nil, &catalog.ValidationError{Field: "attributes", Reason: "must be a JSON object"}
	}
	return a, nil
}

// readUpload reads an optional file field and sniffs its type. A missing
// field yields nil.
func readUpload(r *http.Request, field string) (*model.Blob, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &catalog.ValidationError{Field: field, Reason: "invalid file"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &catalog.ValidationError{Field: field, Reason: "reading file failed"}
	}
	if len(data) == 0 {
		return nil, &catalog.ValidationError{Field: field, Reason: "empty file"}
	}

	mimeType, err := imaging.Sniff(data)
	if err != nil {
		return nil, &catalog.ValidationError{Field: field, Reason: "not an image"}
	}
	return &model.Blob{Data: data, MIME: mimeType}, nil
}
