package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/zbirka/internal/attrs"
	"github.com/erazemk/zbirka/internal/model"
)

func countRows(t *testing.T, database *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(query, args...).Scan(&n))
	return n
}

func mustCollection(t *testing.T, database *sql.DB, name string) *model.Collection {
	t.Helper()
	c, err := CreateCollection(context.Background(), database, name, model.CollectionTypeGeneric, "")
	require.NoError(t, err)
	return c
}

func mustItem(t *testing.T, database *sql.DB, collectionID int64, title string, a attrs.Attributes) *model.Item {
	t.Helper()
	ctx := context.Background()
	id, err := CreateItem(ctx, database, collectionID, title, model.CollectionTypeGeneric, "", a)
	require.NoError(t, err)
	item, err := GetItem(ctx, database, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}
