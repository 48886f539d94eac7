package catalog

import (
	"context"
	"database/sql"

	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// GalleryService manages the secondary photos of items.
type GalleryService struct {
	db *sql.DB
}

// NewGalleryService returns a gallery service backed by db.
func NewGalleryService(db *sql.DB) *GalleryService {
	return &GalleryService{db: db}
}

// AddPhoto appends a photo to an item's gallery.
func (s *GalleryService) AddPhoto(ctx context.Context, itemID int64, photo model.Blob) (*model.Photo, error) {
	blob, err := checkBlob("photo", &photo)
	if err != nil {
		return nil, err
	}
	if err := s.requireItem(ctx, itemID); err != nil {
		return nil, err
	}

	p, err := store.AddPhoto(ctx, s.db, itemID, blob.Data, blob.MIME)
	if err != nil {
		return nil, storeErr("adding photo", err)
	}
	return p, nil
}

// ListPhotos returns photo metadata in display order.
func (s *GalleryService) ListPhotos(ctx context.Context, itemID int64) ([]model.Photo, error) {
	if err := s.requireItem(ctx, itemID); err != nil {
		return nil, err
	}

	photos, err := store.ListPhotos(ctx, s.db, itemID)
	if err != nil {
		return nil, storeErr("listing photos", err)
	}
	if photos == nil {
		photos = []model.Photo{}
	}
	return photos, nil
}

// Photo returns one photo payload.
func (s *GalleryService) Photo(ctx context.Context, itemID, photoID int64) (*model.Blob, error) {
	blob, err := store.GetPhoto(ctx, s.db, itemID, photoID)
	if err != nil {
		return nil, storeErr("getting photo", err)
	}
	if blob == nil {
		return nil, &NotFoundError{Resource: "photo", ID: photoID}
	}
	return blob, nil
}

// DeletePhoto removes one photo.
func (s *GalleryService) DeletePhoto(ctx context.Context, itemID, photoID int64) error {
	ok, err := store.DeletePhoto(ctx, s.db, itemID, photoID)
	if err != nil {
		return storeErr("deleting photo", err)
	}
	if !ok {
		return &NotFoundError{Resource: "photo", ID: photoID}
	}
	return nil
}

func (s *GalleryService) requireItem(ctx context.Context, itemID int64) error {
	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return storeErr("getting item", err)
	}
	if item == nil {
		return &NotFoundError{Resource: "item", ID: itemID}
	}
	return nil
}
