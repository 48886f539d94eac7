package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// ItemService manages items, their attributes and cover images.
type ItemService struct {
	db *sql.DB
}

// NewItemService returns an item service backed by db.
func NewItemService(db *sql.DB) *ItemService {
	return &ItemService{db: db}
}

// Create adds an item to a collection, storing the cover image when given.
func (s *ItemService) Create(ctx context.Context, collectionID int64, in NewItem) (*model.Item, error) {
	in.Title = cleanText(in.Title)
	in.Description = cleanText(in.Description)
	in.Type = cleanText(in.Type)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := checkAttributes(in.Attributes); err != nil {
		return nil, err
	}
	cover, err := checkBlob("coverImage", in.Cover)
	if err != nil {
		return nil, err
	}
	in.Cover = cover

	var item *model.Item
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		item, err = createItem(ctx, tx, collectionID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// createItem inserts an item inside tx. Shared by Create and Import.
func createItem(ctx context.Context, tx *sql.Tx, collectionID int64, in NewItem) (*model.Item, error) {
	c, err := store.GetCollection(ctx, tx, collectionID)
	if err != nil {
		return nil, storeErr("getting collection", err)
	}
	if c == nil {
		return nil, &NotFoundError{Resource: "collection", ID: collectionID}
	}

	itemType := strings.TrimSpace(in.Type)
	if itemType == "" {
		itemType = c.Type
	}

	id, err := store.CreateItem(ctx, tx, collectionID, in.Title, itemType, in.Description, in.Attributes)
	if err != nil {
		return nil, storeErr("creating item", err)
	}

	if in.Cover != nil {
		if _, err := store.SetItemImage(ctx, tx, id, in.Cover.Data, in.Cover.MIME); err != nil {
			return nil, storeErr("storing cover image", err)
		}
	}

	item, err := store.GetItem(ctx, tx, id)
	if err != nil {
		return nil, storeErr("getting item", err)
	}
	return item, nil
}

// List returns the items of a collection with their categories and cover
// image ids.
func (s *ItemService) List(ctx context.Context, collectionID int64) ([]model.Item, error) {
	exists, err := store.CollectionExists(ctx, s.db, collectionID)
	if err != nil {
		return nil, storeErr("checking collection", err)
	}
	if !exists {
		return nil, &NotFoundError{Resource: "collection", ID: collectionID}
	}

	items, err := store.ListItems(ctx, s.db, collectionID)
	if err != nil {
		return nil, storeErr("listing items", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Get returns one item.
func (s *ItemService) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, storeErr("getting item", err)
	}
	if item == nil {
		return nil, &NotFoundError{Resource: "item", ID: id}
	}
	return item, nil
}

// Update replaces title, description and attributes of an item in the given
// collection. A supplied cover replaces the previous one.
func (s *ItemService) Update(ctx context.Context, collectionID, id int64, in ItemUpdate) (*model.Item, error) {
	in.Title = cleanText(in.Title)
	in.Description = cleanText(in.Description)
	if err := check(in); err != nil {
		return nil, err
	}
	if err := checkAttributes(in.Attributes); err != nil {
		return nil, err
	}
	cover, err := checkBlob("coverImage", in.Cover)
	if err != nil {
		return nil, err
	}
	in.Cover = cover

	var item *model.Item
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := store.UpdateItem(ctx, tx, collectionID, id, in.Title, in.Description, in.Attributes)
		if err != nil {
			return storeErr("updating item", err)
		}
		if !ok {
			return &NotFoundError{Resource: "item", ID: id}
		}

		if in.Cover != nil {
			if _, err := store.SetItemImage(ctx, tx, id, in.Cover.Data, in.Cover.MIME); err != nil {
				return storeErr("replacing cover image", err)
			}
		}

		item, err = store.GetItem(ctx, tx, id)
		if err != nil {
			return storeErr("getting item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item with its category links, cover image and photos.
// Deleting an item that does not exist in the collection succeeds.
func (s *ItemService) Delete(ctx context.Context, collectionID, id int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := store.DeleteItem(ctx, tx, collectionID, id)
		if err != nil {
			return storeErr("deleting item", err)
		}
		if !ok {
			slog.DebugContext(ctx, "item delete matched nothing", "collection_id", collectionID, "item_id", id)
		}
		return nil
	})
}

// Image returns the cover image of an item.
func (s *ItemService) Image(ctx context.Context, id int64) (*model.Blob, error) {
	blob, err := store.GetItemImage(ctx, s.db, id)
	if err != nil {
		return nil, storeErr("getting item image", err)
	}
	if blob == nil {
		return nil, &NotFoundError{Resource: "image for item", ID: id}
	}
	return blob, nil
}
