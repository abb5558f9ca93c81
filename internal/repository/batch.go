package repository

import (
	"context"
	"fmt"
	"strings"

	"mesaOps/internal/platform/docstore"
)

// Change is one partial update applied by BatchUpdate.
type Change struct {
	Collection string
	ID         string
	Fields     docstore.Fields
}

// BatchUpdate applies every change atomically: either all documents are updated or none.
// A missing document aborts the whole batch with the store's not-found error.
func BatchUpdate(ctx context.Context, store docstore.Store, changes []Change) error {
	for i, change := range changes {
		if strings.TrimSpace(change.Collection) == "" || strings.TrimSpace(change.ID) == "" {
			return fmt.Errorf("repository: batch change %d missing collection or id", i)
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		for _, change := range changes {
			if err := tx.Update(ctx, change.Collection, change.ID, change.Fields); err != nil {
				return err
			}
		}
		return nil
	})
}
