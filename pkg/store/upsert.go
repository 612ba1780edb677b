package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// Mutator edits row in place. exists reports whether row was loaded from the
// store. It returns false when nothing changed so the write can be skipped.
type Mutator[M any] func(row *M, exists bool) (changed bool, err error)

// Upsert loads the row whose primary key is already set on row, applies
// mutate and inserts or updates it, all inside one write scope. It is the only
// find-then-create-or-update path the repositories use, so two writers on the
// same key cannot interleave between the read and the write.
func Upsert[M any](ctx context.Context, h *Handle, row *M, mutate Mutator[M]) (bool, error) {
	var exists bool
	err := h.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		exists, err = UpsertTx(ctx, tx, row, mutate)
		return err
	})
	return exists, err
}

// UpsertTx is Upsert for callers that already hold a write scope.
func UpsertTx[M any](ctx context.Context, tx bun.Tx, row *M, mutate Mutator[M]) (bool, error) {
	exists := true
	err := tx.NewSelect().Model(row).WherePK().Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return false, err
	}

	changed, err := mutate(row, exists)
	if err != nil || !changed {
		return exists, err
	}

	if exists {
		_, err = tx.NewUpdate().Model(row).WherePK().Exec(ctx)
	} else {
		_, err = tx.NewInsert().Model(row).Exec(ctx)
	}
	return exists, err
}
