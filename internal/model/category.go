package model

import "time"

// Category is a tag scoped to one collection.
type Category struct {
	ID           int64     `json:"id"`
	CollectionID int64     `json:"collection_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// CategoryRef is the {id, name} pair embedded in item responses.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
