package catalog

import (
	"context"
	"database/sql"

	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// CategoryService manages categories and their assignment to items.
type CategoryService struct {
	db *sql.DB
}

// NewCategoryService returns a category service backed by db.
func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

// Create adds a category to a collection.
func (s *CategoryService) Create(ctx context.Context, collectionID int64, name string) (*model.Category, error) {
	in := categoryName{Name: cleanText(name)}
	if err := check(in); err != nil {
		return nil, err
	}

	exists, err := store.CollectionExists(ctx, s.db, collectionID)
	if err != nil {
		return nil, storeErr("checking collection", err)
	}
	if !exists {
		return nil, &NotFoundError{Resource: "collection", ID: collectionID}
	}

	c, err := store.CreateCategory(ctx, s.db, collectionID, in.Name)
	if err != nil {
		return nil, storeErr("creating category", err)
	}
	return c, nil
}

// List returns the categories of a collection.
func (s *CategoryService) List(ctx context.Context, collectionID int64) ([]model.Category, error) {
	exists, err := store.CollectionExists(ctx, s.db, collectionID)
	if err != nil {
		return nil, storeErr("checking collection", err)
	}
	if !exists {
		return nil, &NotFoundError{Resource: "collection", ID: collectionID}
	}

	categories, err := store.ListCategories(ctx, s.db, collectionID)
	if err != nil {
		return nil, storeErr("listing categories", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

// Rename renames a category of the given collection.
func (s *CategoryService) Rename(ctx context.Context, collectionID, id int64, name string) (*model.Category, error) {
	in := categoryName{Name: cleanText(name)}
	if err := check(in); err != nil {
		return nil, err
	}

	ok, err := store.RenameCategory(ctx, s.db, collectionID, id, in.Name)
	if err != nil {
		return nil, storeErr("renaming category", err)
	}
	if !ok {
		return nil, &NotFoundError{Resource: "category", ID: id}
	}

	c, err := store.GetCategory(ctx, s.db, id)
	if err != nil {
		return nil, storeErr("getting category", err)
	}
	return c, nil
}

// Delete removes a category and all of its item assignments in one
// transaction.
func (s *CategoryService) Delete(ctx context.Context, collectionID, id int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := store.DeleteCategory(ctx, tx, collectionID, id)
		if err != nil {
			return storeErr("deleting category", err)
		}
		if !ok {
			return &NotFoundError{Resource: "category", ID: id}
		}
		return nil
	})
}

// Assign tags an item with a category from the item's own collection.
// Assigning a pair that is already linked succeeds without a second row.
func (s *CategoryService) Assign(ctx context.Context, itemID, categoryID int64) error {
	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return storeErr("getting item", err)
	}
	if item == nil {
		return &NotFoundError{Resource: "item", ID: itemID}
	}

	c, err := store.GetCategory(ctx, s.db, categoryID)
	if err != nil {
		return storeErr("getting category", err)
	}
	if c == nil || c.CollectionID != item.CollectionID {
		return &NotFoundError{Resource: "category", ID: categoryID}
	}

	if _, err := store.AssignCategory(ctx, s.db, itemID, categoryID); err != nil {
		return storeErr("assigning category", err)
	}
	return nil
}

// Unassign removes a category from an item.
func (s *CategoryService) Unassign(ctx context.Context, itemID, categoryID int64) error {
	ok, err := store.UnassignCategory(ctx, s.db, itemID, categoryID)
	if err != nil {
		return storeErr("removing category assignment", err)
	}
	if !ok {
		return &NotFoundError{Resource: "category assignment", ID: categoryID}
	}
	return nil
}

// ListForItem returns the categories assigned to an item.
func (s *CategoryService) ListForItem(ctx context.Context, itemID int64) ([]model.Category, error) {
	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return nil, storeErr("getting item", err)
	}
	if item == nil {
		return nil, &NotFoundError{Resource: "item", ID: itemID}
	}

	categories, err := store.ListItemCategories(ctx, s.db, itemID)
	if err != nil {
		return nil, storeErr("listing item categories", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}
