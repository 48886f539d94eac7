package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zbirka/internal/model"
)

// SetItemImage replaces an item's cover image. Any previous cover rows are
// deleted first so an item holds at most one. Run it inside a transaction.
func SetItemImage(ctx context.Context, db DBTX, itemID int64, data []byte, mime string) (int64, error) {
	if _, err := db.ExecContext(ctx, `DELETE FROM images WHERE item_id = ?`, itemID); err != nil {
		return 0, fmt.Errorf("removing previous item image: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO images (item_id, data, mime) VALUES (?, ?, ?)`,
		itemID, data, mime,
	)
	if err != nil {
		return 0, fmt.Errorf("setting item image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting image id: %w", err)
	}
	return id, nil
}

// GetItemImage returns an item's cover image, or nil if it has none.
func GetItemImage(ctx context.Context, db DBTX, itemID int64) (*model.Blob, error) {
	b := &model.Blob{}
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM images WHERE item_id = ? ORDER BY id DESC LIMIT 1`, itemID,
	).Scan(&b.Data, &b.MIME)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item image: %w", err)
	}
	return b, nil
}
