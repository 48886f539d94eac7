package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zbirka/internal/model"
)

const collectionColumns = `c.id, c.name, c.type, c.description, c.created_at,
	(SELECT COUNT(*) FROM items i WHERE i.collection_id = c.id) AS item_count`

// CreateCollection creates a new collection.
func CreateCollection(ctx context.Context, db DBTX, name, collectionType, description string) (*model.Collection, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO collections (name, type, description) VALUES (?, ?, ?)`,
		name, collectionType, description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting collection id: %w", err)
	}

	return GetCollection(ctx, db, id)
}

// GetCollection returns a collection by ID with its item count.
func GetCollection(ctx context.Context, db DBTX, id int64) (*model.Collection, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections c WHERE c.id = ?`, id,
	)
	c, err := scanCollection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	return c, nil
}

// ListCollections returns all collections with their item counts.
func ListCollections(ctx context.Context, db DBTX) ([]model.Collection, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM collections c ORDER BY c.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var collections []model.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

// CollectionExists reports whether a collection with the given ID exists.
func CollectionExists(ctx context.Context, db DBTX, id int64) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}
	return n > 0, nil
}

// UpdateCollection replaces a collection's name and description.
func UpdateCollection(ctx context.Context, db DBTX, id int64, name, description string) (bool, error) {
	return execAffected(ctx, db, "updating collection",
		`UPDATE collections SET name = ?, description = ? WHERE id = ?`,
		name, description, id,
	)
}

// UpdateCollectionDescription replaces only the description.
func UpdateCollectionDescription(ctx context.Context, db DBTX, id int64, description string) (bool, error) {
	return execAffected(ctx, db, "updating collection description",
		`UPDATE collections SET description = ? WHERE id = ?`,
		description, id,
	)
}

// DeleteCollection removes a collection together with its items, their
// category links, cover images and photos, and its categories. Run it inside
// a transaction.
func DeleteCollection(ctx context.Context, db DBTX, id int64) (bool, error) {
	steps := []struct {
		what  string
		query string
	}{
		{"deleting collection item categories",
			`DELETE FROM item_categories WHERE item_id IN (SELECT id FROM items WHERE collection_id = ?)`},
		{"deleting collection category links",
			`DELETE FROM item_categories WHERE category_id IN (SELECT id FROM categories WHERE collection_id = ?)`},
		{"deleting collection images",
			`DELETE FROM images WHERE item_id IN (SELECT id FROM items WHERE collection_id = ?)`},
		{"deleting collection photos",
			`DELETE FROM item_photos WHERE item_id IN (SELECT id FROM items WHERE collection_id = ?)`},
		{"deleting collection items", `DELETE FROM items WHERE collection_id = ?`},
		{"deleting collection categories", `DELETE FROM categories WHERE collection_id = ?`},
	}
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.query, id); err != nil {
			return false, fmt.Errorf("%s: %w", s.what, err)
		}
	}

	return execAffected(ctx, db, "deleting collection", `DELETE FROM collections WHERE id = ?`, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollection(s scanner) (*model.Collection, error) {
	c := &model.Collection{}
	var description sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &c.Type, &description, &c.CreatedAt, &c.ItemCount); err != nil {
		return nil, err
	}
	c.Description = description.String
	return c, nil
}
