package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/erazemk/zbirka/internal/attrs"
	"github.com/erazemk/zbirka/internal/model"
)

// itemColumns composes an item with its newest cover image id and its
// categories aggregated as a JSON array. json_group_array yields "[]" for an
// item without categories, which keeps names containing commas intact.
const itemColumns = `i.id, i.collection_id, i.title, i.type, i.description, i.attributes, i.created_at,
	(SELECT MAX(img.id) FROM images img WHERE img.item_id = i.id) AS image_id,
	(SELECT json_group_array(json_object('id', c.id, 'name', c.name))
	   FROM item_categories ic
	   JOIN categories c ON c.id = ic.category_id
	  WHERE ic.item_id = i.id) AS categories`

// CreateItem creates a new item and returns its ID.
func CreateItem(ctx context.Context, db DBTX, collectionID int64, title, itemType, description string, a attrs.Attributes) (int64, error) {
	encoded, err := attrs.Encode(a)
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (collection_id, title, type, description, attributes) VALUES (?, ?, ?, ?, ?)`,
		collectionID, title, itemType, description, encoded,
	)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}
	return id, nil
}

// GetItem returns an item by ID with its cover image id and categories.
func GetItem(ctx context.Context, db DBTX, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items i WHERE i.id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items of a collection ordered by ID.
func ListItems(ctx context.Context, db DBTX, collectionID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items i WHERE i.collection_id = ? ORDER BY i.id`, collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem replaces an item's title, description and attributes. Omitted
// attribute keys are dropped, not merged.
func UpdateItem(ctx context.Context, db DBTX, collectionID, id int64, title, description string, a attrs.Attributes) (bool, error) {
	encoded, err := attrs.Encode(a)
	if err != nil {
		return false, err
	}
	return execAffected(ctx, db, "updating item",
		`UPDATE items SET title = ?, description = ?, attributes = ? WHERE id = ? AND collection_id = ?`,
		title, description, encoded, id, collectionID,
	)
}

// DeleteItem removes an item with its category links, cover image and
// photos. Nothing is touched unless the item belongs to the collection. Run it
// inside a transaction.
func DeleteItem(ctx context.Context, db DBTX, collectionID, id int64) (bool, error) {
	const owned = `(SELECT id FROM items WHERE id = ? AND collection_id = ?)`

	children := []struct {
		what  string
		query string
	}{
		{"deleting item categories", `DELETE FROM item_categories WHERE item_id IN ` + owned},
		{"deleting item image", `DELETE FROM images WHERE item_id IN ` + owned},
		{"deleting item photos", `DELETE FROM item_photos WHERE item_id IN ` + owned},
	}
	for _, c := range children {
		if _, err := db.ExecContext(ctx, c.query, id, collectionID); err != nil {
			return false, fmt.Errorf("%s: %w", c.what, err)
		}
	}

	return execAffected(ctx, db, "deleting item",
		`DELETE FROM items WHERE id = ? AND collection_id = ?`, id, collectionID,
	)
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	var attributes, categories string
	var imageID sql.NullInt64
	if err := s.Scan(&item.ID, &item.CollectionID, &item.Title, &item.Type, &description,
		&attributes, &item.CreatedAt, &imageID, &categories); err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Attributes = attrs.Decode(attributes)
	if imageID.Valid {
		id := imageID.Int64
		item.ImageID = &id
	}

	refs, err := parseCategoryRefs(categories)
	if err != nil {
		return nil, err
	}
	item.Categories = refs
	return item, nil
}

// parseCategoryRefs reads the aggregated JSON array, always returning a
// non-nil slice sorted by category ID.
func parseCategoryRefs(text string) ([]model.CategoryRef, error) {
	refs := []model.CategoryRef{}
	if text == "" {
		return refs, nil
	}
	if err := json.Unmarshal([]byte(text), &refs); err != nil {
		return nil, fmt.Errorf("parsing item categories: %w", err)
	}
	if refs == nil {
		refs = []model.CategoryRef{}
	}
	sort.Slice(refs, func(a, b int) bool { return refs[a].ID < refs[b].ID })
	return refs, nil
}
