package model

import (
	"strings"
	"time"
)

// Collection is a named group of items sharing a declared type.
type Collection struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// Derived on reads.
	ItemCount int `json:"item_count"`
}

// Built-in collection types. Any other non-empty string is a custom type.
const (
	CollectionTypeGeneric = "generic"
	CollectionTypeBooks   = "books"
	CollectionTypeRecords = "records"
)

// NormalizeCollectionType trims the type and falls back to generic.
func NormalizeCollectionType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return CollectionTypeGeneric
	}
	return t
}
