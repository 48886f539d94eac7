package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"
)

// withTx runs fn inside a transaction, committing when it returns nil and
// rolling back otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "beginning transaction", Err: err}
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return multierr.Append(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "committing transaction", Err: err}
	}
	return nil
}
