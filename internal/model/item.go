package model

import (
	"time"

	"github.com/erazemk/zbirka/internal/attrs"
)

// Item is a single cataloged entry within a collection.
type Item struct {
	ID           int64            `json:"id"`
	CollectionID int64            `json:"collection_id"`
	Title        string           `json:"title"`
	Type         string           `json:"type"`
	Description  string           `json:"description"`
	Attributes   attrs.Attributes `json:"attributes"`
	CreatedAt    time.Time        `json:"created_at"`

	// Joined fields.
	ImageID    *int64        `json:"image_id"`
	Categories []CategoryRef `json:"categories"`
}

// HasImage reports whether the item has a cover image.
func (i *Item) HasImage() bool {
	return i.ImageID != nil
}
