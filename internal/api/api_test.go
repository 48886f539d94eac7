package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zbirka/internal/catalog"
	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/model"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, RouterConfig{
		MaxUploadBytes: 1 << 20,
		CORSOrigins:    []string{"http://localhost:3000"},
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartRequest builds a multipart body with the given fields and an
// optional file.
func multipartRequest(t *testing.T, method, url string, fields map[string]string, fileField string, file []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "upload.bin")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func createCollection(t *testing.T, server *httptest.Server, name string) model.Collection {
	t.Helper()
	resp := doJSON(t, http.MethodPost, server.URL+"/api/collections", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[model.Collection](t, resp)
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestRequestIDEchoed(t *testing.T) {
	server := setupTestServer(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))
}

func TestCollectionItemFlow(t *testing.T) {
	server := setupTestServer(t)
	vinyl := createCollection(t, server, "Vinyl")
	assert.Equal(t, "generic", vinyl.Type)

	itemsURL := server.URL + "/api/collections/" + itoa(vinyl.ID) + "/items"

	// Attributes sent as an encoded string, the way the old client did.
	resp := doJSON(t, http.MethodPost, itemsURL, map[string]any{
		"title": "Kind of Blue",
		"data":  `{"value":45.5}`,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decodeBody[model.Item](t, resp)
	assert.Equal(t, 45.5, item.Attributes["value"])

	resp = doJSON(t, http.MethodGet, itemsURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decodeBody[[]model.Item](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, "Kind of Blue", items[0].Title)
	assert.Equal(t, 45.5, items[0].Attributes["value"])
	assert.NotNil(t, items[0].Categories)
	assert.Empty(t, items[0].Categories)
	assert.Nil(t, items[0].ImageID)

	// Categories.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/collections/"+itoa(vinyl.ID)+"/categories", map[string]string{"name": "Jazz"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	jazz := decodeBody[model.Category](t, resp)

	assignURL := server.URL + "/api/items/" + itoa(item.ID) + "/categories/" + itoa(jazz.ID)
	resp = doJSON(t, http.MethodPost, assignURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, assignURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/items/"+itoa(item.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[model.Item](t, resp)
	assert.Equal(t, []model.CategoryRef{{ID: jazz.ID, Name: "Jazz"}}, got.Categories)

	// Update replaces attributes.
	resp = doJSON(t, http.MethodPut, itemsURL+"/"+itoa(item.ID), map[string]any{
		"title":      "Kind of Blue",
		"attributes": map[string]any{"value": "60.00", "label": "Columbia"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decodeBody[model.Item](t, resp)
	assert.Equal(t, "60.00", got.Attributes["value"])
	assert.Equal(t, "Columbia", got.Attributes["label"])

	resp = doJSON(t, http.MethodGet, server.URL+"/api/collections/"+itoa(vinyl.ID)+"/value", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	value := decodeBody[catalog.Valuation](t, resp)
	assert.Equal(t, "60.00", value.Total)

	// Deleting the collection removes everything under it.
	resp = doJSON(t, http.MethodDelete, server.URL+"/api/collections/"+itoa(vinyl.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/collections/"+itoa(vinyl.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doJSON(t, http.MethodGet, server.URL+"/api/items/"+itoa(item.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/collections", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "name required", body["error"])

	c := createCollection(t, server, "Vinyl")
	itemsURL := server.URL + "/api/collections/" + itoa(c.ID) + "/items"

	resp = doJSON(t, http.MethodPost, itemsURL, map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, itemsURL, map[string]any{"title": "x", "attributes": "[1,2]"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/collections/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/collections/999/items", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestItemDeleteIsIdempotent(t *testing.T) {
	server := setupTestServer(t)
	c := createCollection(t, server, "Vinyl")

	resp := doJSON(t, http.MethodDelete, server.URL+"/api/collections/"+itoa(c.ID)+"/items/12345", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMultipartCoverImage(t *testing.T) {
	server := setupTestServer(t)
	c := createCollection(t, server, "Books")
	cover := createTestPNG(t, 400, 200)

	resp := multipartRequest(t, http.MethodPost, server.URL+"/api/collections/"+itoa(c.ID)+"/items",
		map[string]string{"title": "Dune", "data": `{"author":"Herbert"}`},
		"coverImage", cover,
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decodeBody[model.Item](t, resp)
	require.NotNil(t, item.ImageID)
	assert.Equal(t, "Herbert", item.Attributes["author"])

	imageURL := server.URL + "/api/collections/items/" + itoa(item.ID) + "/image"
	resp = doJSON(t, http.MethodGet, imageURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, cover, data)

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	cached, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer cached.Body.Close()
	assert.Equal(t, http.StatusNotModified, cached.StatusCode)

	resp = doJSON(t, http.MethodGet, imageURL+"?thumb=100", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	thumb, _, err := image.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 100, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())
}

func TestCoverImageRejectsNonImage(t *testing.T) {
	server := setupTestServer(t)
	c := createCollection(t, server, "Books")

	resp := multipartRequest(t, http.MethodPost, server.URL+"/api/collections/"+itoa(c.ID)+"/items",
		map[string]string{"title": "Dune"},
		"coverImage", []byte("plain text, not a picture"),
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemWithoutImage(t *testing.T) {
	server := setupTestServer(t)
	c := createCollection(t, server, "Books")

	resp := doJSON(t, http.MethodPost, server.URL+"/api/collections/"+itoa(c.ID)+"/items", map[string]any{"title": "Emma"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decodeBody[model.Item](t, resp)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/collections/items/"+itoa(item.ID)+"/image", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPhotosFlow(t *testing.T) {
	server := setupTestServer(t)
	c := createCollection(t, server, "Books")
	resp := doJSON(t, http.MethodPost, server.URL+"/api/collections/"+itoa(c.ID)+"/items", map[string]any{"title": "Dune"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decodeBody[model.Item](t, resp)

	photosURL := server.URL + "/api/collections/items/" + itoa(item.ID) + "/photos"
	resp = multipartRequest(t, http.MethodPost, photosURL, nil, "photo", createTestPNG(t, 20, 20))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	photo := decodeBody[model.Photo](t, resp)
	assert.Equal(t, "image/png", photo.MIME)

	resp = doJSON(t, http.MethodGet, photosURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	photos := decodeBody[[]model.Photo](t, resp)
	require.Len(t, photos, 1)

	resp = doJSON(t, http.MethodGet, photosURL+"/"+itoa(photo.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp = doJSON(t, http.MethodDelete, photosURL+"/"+itoa(photo.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, photosURL+"/"+itoa(photo.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = multipartRequest(t, http.MethodPost, photosURL, nil, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadTooLarge(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, RouterConfig{MaxUploadBytes: 1 << 10})
	c, err := catalog.NewCollectionService(database).Create(t.Context(), catalog.NewCollection{Name: "Books"})
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Huge"))
	fw, err := mw.CreateFormFile("coverImage", "huge.png")
	require.NoError(t, err)
	_, err = fw.Write(make([]byte, 4<<10))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/collections/"+itoa(c.ID)+"/items", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportImport(t *testing.T) {
	server := setupTestServer(t)
	c := createCollection(t, server, "Vinyl")

	resp := multipartRequest(t, http.MethodPost, server.URL+"/api/collections/"+itoa(c.ID)+"/items",
		map[string]string{"title": "Kind of Blue", "attributes": `{"value":45.5}`},
		"coverImage", createTestPNG(t, 10, 10),
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/collections/"+itoa(c.ID)+"/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	archive := decodeBody[catalog.Archive](t, resp)
	require.Len(t, archive.Items, 1)
	require.NotNil(t, archive.Items[0].Cover)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/collections/import", archive)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	imported := decodeBody[model.Collection](t, resp)
	assert.NotEqual(t, c.ID, imported.ID)
	assert.Equal(t, 1, imported.ItemCount)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/collections/"+itoa(imported.ID)+"/items", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decodeBody[[]model.Item](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, 45.5, items[0].Attributes["value"])
	assert.NotNil(t, items[0].ImageID)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/collections/import", map[string]any{"version": 9})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLargeIntegersKeepPrecision(t *testing.T) {
	server := setupTestServer(t)
	c := createCollection(t, server, "Stamps")
	itemsURL := server.URL + "/api/collections/" + itoa(c.ID) + "/items"

	resp := doJSON(t, http.MethodPost, itemsURL, map[string]any{
		"title":      "Penny Black",
		"attributes": json.RawMessage(`{"serial":9007199254740993}`),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	archive := map[string]any{
		"version":    catalog.ArchiveVersion,
		"collection": map[string]any{"name": "Imported"},
		"items": []any{map[string]any{
			"title":      "Two Penny Blue",
			"attributes": json.RawMessage(`{"serial":9007199254740995}`),
		}},
	}
	resp = doJSON(t, http.MethodPost, server.URL+"/api/collections/import", archive)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	imported := decodeBody[model.Collection](t, resp)

	for _, tc := range []struct {
		url  string
		want string
	}{
		{itemsURL, `"serial":9007199254740993`},
		{server.URL + "/api/collections/" + itoa(imported.ID) + "/items", `"serial":9007199254740995`},
	} {
		resp = doJSON(t, http.MethodGet, tc.url, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), tc.want)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/collections", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecovererAnswers500(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestETagMatches(t *testing.T) {
	etag := imageETag([]byte("data"))
	assert.True(t, etagMatches(etag, etag))
	assert.True(t, etagMatches(`"other", `+etag, etag))
	assert.True(t, etagMatches("W/"+etag, etag))
	assert.True(t, etagMatches("*", etag))
	assert.False(t, etagMatches("", etag))
	assert.False(t, etagMatches(`"other"`, etag))
}
