package catalog

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// ValueAttribute is the item attribute summed by Value.
const ValueAttribute = "value"

// CollectionService manages collections.
type CollectionService struct {
	db *sql.DB
}

// NewCollectionService returns a collection service backed by db.
func NewCollectionService(db *sql.DB) *CollectionService {
	return &CollectionService{db: db}
}

// Valuation is the total of the value attribute across a collection.
type Valuation struct {
	CollectionID int64  `json:"collection_id"`
	Total        string `json:"total"`
	PricedItems  int    `json:"priced_items"`
	ItemCount    int    `json:"item_count"`
}

// Create creates a collection. An empty type becomes generic.
func (s *CollectionService) Create(ctx context.Context, in NewCollection) (*model.Collection, error) {
	in.Name = cleanText(in.Name)
	in.Description = cleanText(in.Description)
	in.Type = model.NormalizeCollectionType(cleanText(in.Type))
	if err := check(in); err != nil {
		return nil, err
	}

	c, err := store.CreateCollection(ctx, s.db, in.Name, in.Type, in.Description)
	if err != nil {
		return nil, storeErr("creating collection", err)
	}
	return c, nil
}

// List returns all collections with item counts.
func (s *CollectionService) List(ctx context.Context) ([]model.Collection, error) {
	collections, err := store.ListCollections(ctx, s.db)
	if err != nil {
		return nil, storeErr("listing collections", err)
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	return collections, nil
}

// Get returns one collection.
func (s *CollectionService) Get(ctx context.Context, id int64) (*model.Collection, error) {
	c, err := store.GetCollection(ctx, s.db, id)
	if err != nil {
		return nil, storeErr("getting collection", err)
	}
	if c == nil {
		return nil, &NotFoundError{Resource: "collection", ID: id}
	}
	return c, nil
}

// Update replaces a collection's name and description.
func (s *CollectionService) Update(ctx context.Context, id int64, in CollectionUpdate) (*model.Collection, error) {
	in.Name = cleanText(in.Name)
	in.Description = cleanText(in.Description)
	if err := check(in); err != nil {
		return nil, err
	}

	ok, err := store.UpdateCollection(ctx, s.db, id, in.Name, in.Description)
	if err != nil {
		return nil, storeErr("updating collection", err)
	}
	if !ok {
		return nil, &NotFoundError{Resource: "collection", ID: id}
	}
	return s.Get(ctx, id)
}

// UpdateDescription replaces only the description.
func (s *CollectionService) UpdateDescription(ctx context.Context, id int64, description string) (*model.Collection, error) {
	ok, err := store.UpdateCollectionDescription(ctx, s.db, id, cleanText(description))
	if err != nil {
		return nil, storeErr("updating collection description", err)
	}
	if !ok {
		return nil, &NotFoundError{Resource: "collection", ID: id}
	}
	return s.Get(ctx, id)
}

// Delete removes a collection and everything it owns in one transaction.
func (s *CollectionService) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		ok, err := store.DeleteCollection(ctx, tx, id)
		if err != nil {
			return storeErr("deleting collection", err)
		}
		if !ok {
			return &NotFoundError{Resource: "collection", ID: id}
		}
		return nil
	})
}

// Value sums the numeric value attribute of every item in the collection.
// Items without a numeric value count as zero.
func (s *CollectionService) Value(ctx context.Context, id int64) (*Valuation, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	items, err := store.ListItems(ctx, s.db, id)
	if err != nil {
		return nil, storeErr("listing items", err)
	}

	total := decimal.Zero
	priced := 0
	for _, item := range items {
		if v, ok := item.Attributes.Number(ValueAttribute); ok {
			total = total.Add(v)
			priced++
		}
	}

	return &Valuation{
		CollectionID: id,
		Total:        total.StringFixed(2),
		PricedItems:  priced,
		ItemCount:    len(items),
	}, nil
}
