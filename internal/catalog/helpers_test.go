package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/zbirka/internal/attrs"
	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/model"
)

type services struct {
	db          *sql.DB
	collections *CollectionService
	items       *ItemService
	categories  *CategoryService
	gallery     *GalleryService
}

func newServices(t *testing.T) *services {
	t.Helper()
	database := db.NewTestDB(t)
	return &services{
		db:          database,
		collections: NewCollectionService(database),
		items:       NewItemService(database),
		categories:  NewCategoryService(database),
		gallery:     NewGalleryService(database),
	}
}

func (s *services) collection(t *testing.T, name string) *model.Collection {
	t.Helper()
	c, err := s.collections.Create(context.Background(), NewCollection{Name: name})
	require.NoError(t, err)
	return c
}

func (s *services) item(t *testing.T, collectionID int64, title string, a attrs.Attributes) *model.Item {
	t.Helper()
	item, err := s.items.Create(context.Background(), collectionID, NewItem{Title: title, Attributes: a})
	require.NoError(t, err)
	return item
}

func (s *services) category(t *testing.T, collectionID int64, name string) *model.Category {
	t.Helper()
	c, err := s.categories.Create(context.Background(), collectionID, name)
	require.NoError(t, err)
	return c
}

func (s *services) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(query, args...).Scan(&n))
	return n
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 200, 255})
		}
	}
	return img
}

// pngBlob returns a PNG payload; different sizes give different bytes.
func pngBlob(t *testing.T, w, h int) *model.Blob {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return &model.Blob{Data: buf.Bytes(), MIME: "image/png"}
}

func jpegBlob(t *testing.T, w, h int) *model.Blob {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return &model.Blob{Data: buf.Bytes(), MIME: "image/jpeg"}
}
