package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/zbirka/internal/attrs"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// ArchiveVersion is the export format written by Export and accepted by
// Import.
const ArchiveVersion = 1

// Archive is a self-contained export of one collection.
type Archive struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Collection ArchiveCollection `json:"collection"`
	Categories []ArchiveCategory `json:"categories"`
	Items      []ArchiveItem     `json:"items"`
}

// ArchiveCollection holds the collection fields carried by an archive.
type ArchiveCollection struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ArchiveCategory is one exported category. ID is only a key inside the
// archive; names may repeat.
type ArchiveCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ArchiveItem is one exported item. CategoryIDs refer to ArchiveCategory.ID.
type ArchiveItem struct {
	Title       string           `json:"title"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Attributes  attrs.Attributes `json:"attributes"`
	CategoryIDs []int64          `json:"category_ids"`
	Cover       *ArchiveImage    `json:"cover,omitempty"`
	Photos      []ArchiveImage   `json:"photos"`
}

// ArchiveImage is an image payload. Data is base64 in JSON.
type ArchiveImage struct {
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// Export builds an archive of a collection with its categories, items and
// images.
func (s *CollectionService) Export(ctx context.Context, id int64) (*Archive, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	categories, err := store.ListCategories(ctx, s.db, id)
	if err != nil {
		return nil, storeErr("listing categories", err)
	}
	items, err := store.ListItems(ctx, s.db, id)
	if err != nil {
		return nil, storeErr("listing items", err)
	}

	a := &Archive{
		Version:    ArchiveVersion,
		ExportedAt: time.Now().UTC(),
		Collection: ArchiveCollection{Name: c.Name, Type: c.Type, Description: c.Description},
		Categories: make([]ArchiveCategory, 0, len(categories)),
		Items:      make([]ArchiveItem, 0, len(items)),
	}
	for _, cat := range categories {
		a.Categories = append(a.Categories, ArchiveCategory{ID: cat.ID, Name: cat.Name})
	}

	for _, item := range items {
		ai := ArchiveItem{
			Title:       item.Title,
			Type:        item.Type,
			Description: item.Description,
			Attributes:  item.Attributes,
			CategoryIDs: make([]int64, 0, len(item.Categories)),
			Photos:      []ArchiveImage{},
		}
		for _, ref := range item.Categories {
			ai.CategoryIDs = append(ai.CategoryIDs, ref.ID)
		}

		if item.HasImage() {
			cover, err := store.GetItemImage(ctx, s.db, item.ID)
			if err != nil {
				return nil, storeErr("getting item image", err)
			}
			if cover != nil {
				ai.Cover = &ArchiveImage{MIME: cover.MIME, Data: cover.Data}
			}
		}

		photos, err := store.ListPhotoBlobs(ctx, s.db, item.ID)
		if err != nil {
			return nil, storeErr("listing photos", err)
		}
		for _, p := range photos {
			ai.Photos = append(ai.Photos, ArchiveImage{MIME: p.MIME, Data: p.Data})
		}

		a.Items = append(a.Items, ai)
	}

	return a, nil
}

// importItem is an archive item after validation.
type importItem struct {
	in          NewItem
	categoryIDs []int64
	photos      []model.Blob
}

// Import creates a new collection from an archive in one transaction.
// Every archive category becomes a new category, and item assignments are
// remapped through the archive's category ids. Image types are detected from
// the payloads; the archive's mime fields are ignored.
func (s *CollectionService) Import(ctx context.Context, a *Archive) (*model.Collection, error) {
	if a == nil {
		return nil, &ValidationError{Field: "archive"}
	}
	if a.Version != ArchiveVersion {
		return nil, &ValidationError{Field: "version", Reason: fmt.Sprintf("unsupported archive version %d", a.Version)}
	}

	col := NewCollection{
		Name:        cleanText(a.Collection.Name),
		Type:        model.NormalizeCollectionType(cleanText(a.Collection.Type)),
		Description: cleanText(a.Collection.Description),
	}
	if err := check(col); err != nil {
		return nil, err
	}

	categoryNames := make(map[int64]string, len(a.Categories))
	for i, ac := range a.Categories {
		if _, dup := categoryNames[ac.ID]; dup {
			return nil, &ValidationError{Field: fmt.Sprintf("categories[%d].id", i), Reason: fmt.Sprintf("duplicate id %d", ac.ID)}
		}
		name := cleanText(ac.Name)
		if name == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("categories[%d].name", i)}
		}
		categoryNames[ac.ID] = name
	}

	items, err := importItems(a.Items, categoryNames)
	if err != nil {
		return nil, err
	}

	var created *model.Collection
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		c, err := store.CreateCollection(ctx, tx, col.Name, col.Type, col.Description)
		if err != nil {
			return storeErr("creating collection", err)
		}

		categoryIDs := make(map[int64]int64, len(a.Categories))
		for _, ac := range a.Categories {
			cat, err := store.CreateCategory(ctx, tx, c.ID, categoryNames[ac.ID])
			if err != nil {
				return storeErr("creating category", err)
			}
			categoryIDs[ac.ID] = cat.ID
		}

		for _, it := range items {
			item, err := createItem(ctx, tx, c.ID, it.in)
			if err != nil {
				return err
			}

			for _, key := range it.categoryIDs {
				if _, err := store.AssignCategory(ctx, tx, item.ID, categoryIDs[key]); err != nil {
					return storeErr("assigning category", err)
				}
			}

			for _, p := range it.photos {
				if _, err := store.AddPhoto(ctx, tx, item.ID, p.Data, p.MIME); err != nil {
					return storeErr("adding photo", err)
				}
			}
		}

		created, err = store.GetCollection(ctx, tx, c.ID)
		if err != nil {
			return storeErr("getting collection", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// importItems validates archive items before anything is written.
func importItems(archived []ArchiveItem, categoryNames map[int64]string) ([]importItem, error) {
	items := make([]importItem, len(archived))
	for i, ai := range archived {
		in := NewItem{
			Title:       cleanText(ai.Title),
			Type:        cleanText(ai.Type),
			Description: cleanText(ai.Description),
			Attributes:  ai.Attributes,
		}
		if err := check(in); err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("items[%d].title", i)}
		}
		if err := checkAttributes(in.Attributes); err != nil {
			return nil, err
		}

		if ai.Cover != nil {
			cover, err := checkBlob(fmt.Sprintf("items[%d].cover", i), &model.Blob{Data: ai.Cover.Data})
			if err != nil {
				return nil, err
			}
			in.Cover = cover
		}

		for _, key := range ai.CategoryIDs {
			if _, ok := categoryNames[key]; !ok {
				return nil, &ValidationError{Field: fmt.Sprintf("items[%d].category_ids", i), Reason: fmt.Sprintf("unknown category %d", key)}
			}
		}

		photos := make([]model.Blob, 0, len(ai.Photos))
		for j, p := range ai.Photos {
			blob, err := checkBlob(fmt.Sprintf("items[%d].photos[%d]", i, j), &model.Blob{Data: p.Data})
			if err != nil {
				return nil, err
			}
			photos = append(photos, *blob)
		}

		items[i] = importItem{in: in, categoryIDs: ai.CategoryIDs, photos: photos}
	}
	return items, nil
}
