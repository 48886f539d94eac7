package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zbirka/internal/model"
)

// CreateCategory creates a category in a collection.
func CreateCategory(ctx context.Context, db DBTX, collectionID int64, name string) (*model.Category, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (collection_id, name) VALUES (?, ?)`,
		collectionID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db DBTX, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT id, collection_id, name, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.CollectionID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns the categories of a collection ordered by ID.
func ListCategories(ctx context.Context, db DBTX, collectionID int64) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, collection_id, name, created_at FROM categories
		 WHERE collection_id = ? ORDER BY id`, collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// ListItemCategories returns the categories assigned to an item.
func ListItemCategories(ctx context.Context, db DBTX, itemID int64) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.collection_id, c.name, c.created_at
		 FROM categories c
		 JOIN item_categories ic ON ic.category_id = c.id
		 WHERE ic.item_id = ?
		 ORDER BY c.id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// RenameCategory renames a category scoped to its collection.
func RenameCategory(ctx context.Context, db DBTX, collectionID, id int64, name string) (bool, error) {
	return execAffected(ctx, db, "renaming category",
		`UPDATE categories SET name = ? WHERE id = ? AND collection_id = ?`,
		name, id, collectionID,
	)
}

// DeleteCategory removes a category and every assignment referencing it.
// Run it inside a transaction.
func DeleteCategory(ctx context.Context, db DBTX, collectionID, id int64) (bool, error) {
	_, err := db.ExecContext(ctx,
		`DELETE FROM item_categories WHERE category_id IN
		 (SELECT id FROM categories WHERE id = ? AND collection_id = ?)`,
		id, collectionID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting category assignments: %w", err)
	}

	return execAffected(ctx, db, "deleting category",
		`DELETE FROM categories WHERE id = ? AND collection_id = ?`, id, collectionID,
	)
}

// AssignCategory links an item to a category. Assigning an existing pair is
// a no-op; the result reports whether a new link was created.
func AssignCategory(ctx context.Context, db DBTX, itemID, categoryID int64) (bool, error) {
	return execAffected(ctx, db, "assigning category",
		`INSERT OR IGNORE INTO item_categories (item_id, category_id) VALUES (?, ?)`,
		itemID, categoryID,
	)
}

// UnassignCategory removes a link, reporting whether it existed.
func UnassignCategory(ctx context.Context, db DBTX, itemID, categoryID int64) (bool, error) {
	return execAffected(ctx, db, "removing category assignment",
		`DELETE FROM item_categories WHERE item_id = ? AND category_id = ?`,
		itemID, categoryID,
	)
}

func scanCategories(rows *sql.Rows) ([]model.Category, error) {
	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.CollectionID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
