package core

import (
	"context"

	"github.com/currexhq/ledger/internal/port"
)

// withTx runs fn inside one repository transaction. Any error (or a failed
// commit) rolls back every effect fn produced; there is no partial outcome.
func withTx(ctx context.Context, repo port.Repository, fn func(port.Tx) error) error {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}
