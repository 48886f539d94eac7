package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zbirka/internal/model"
)

// AddPhoto appends a gallery photo to an item.
func AddPhoto(ctx context.Context, db DBTX, itemID int64, data []byte, mime string) (*model.Photo, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO item_photos (item_id, data, mime) VALUES (?, ?, ?)`,
		itemID, data, mime,
	)
	if err != nil {
		return nil, fmt.Errorf("adding photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting photo id: %w", err)
	}

	p := &model.Photo{}
	err = db.QueryRowContext(ctx,
		`SELECT id, item_id, mime, created_at FROM item_photos WHERE id = ?`, id,
	).Scan(&p.ID, &p.ItemID, &p.MIME, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting photo: %w", err)
	}
	return p, nil
}

// ListPhotos returns photo metadata for an item in upload order. Payloads are
// not loaded.
func ListPhotos(ctx context.Context, db DBTX, itemID int64) ([]model.Photo, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, mime, created_at FROM item_photos WHERE item_id = ? ORDER BY id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.ID, &p.ItemID, &p.MIME, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// ListPhotoBlobs returns every photo payload of an item in upload order.
func ListPhotoBlobs(ctx context.Context, db DBTX, itemID int64) ([]model.Blob, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT data, mime FROM item_photos WHERE item_id = ? ORDER BY id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing photo data: %w", err)
	}
	defer rows.Close()

	var blobs []model.Blob
	for rows.Next() {
		var b model.Blob
		if err := rows.Scan(&b.Data, &b.MIME); err != nil {
			return nil, fmt.Errorf("scanning photo data: %w", err)
		}
		blobs = append(blobs, b)
	}
	return blobs, rows.Err()
}

// GetPhoto returns one photo payload, or nil if the item has no such photo.
func GetPhoto(ctx context.Context, db DBTX, itemID, photoID int64) (*model.Blob, error) {
	b := &model.Blob{}
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM item_photos WHERE id = ? AND item_id = ?`, photoID, itemID,
	).Scan(&b.Data, &b.MIME)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting photo: %w", err)
	}
	return b, nil
}

// DeletePhoto removes one photo, reporting whether it existed.
func DeletePhoto(ctx context.Context, db DBTX, itemID, photoID int64) (bool, error) {
	return execAffected(ctx, db, "deleting photo",
		`DELETE FROM item_photos WHERE id = ? AND item_id = ?`, photoID, itemID,
	)
}
