package in_memory

import (
	"context"
	"errors"

	"github.com/currexhq/ledger/internal/apperr"
	"github.com/currexhq/ledger/internal/domain"
	"github.com/currexhq/ledger/internal/port"
)

var _ port.Tx = (*memoryTx)(nil)

// memoryTx mutates the repo in place while holding its mutex and records a
// compensating undo per step; Rollback replays the undos in reverse so the
// unit is all-or-nothing.
type memoryTx struct {
	repo  *MemoryRepo
	undos []func()
	done  bool
}

func (t *memoryTx) Debit(ctx context.Context, accountID, currency string, amount int64) error {
	if err := t.repo.debitLocked(accountID, currency, amount); err != nil {
		return err
	}
	t.undos = append(t.undos, func() { t.repo.creditLocked(accountID, currency, amount) })
	return nil
}

func (t *memoryTx) Credit(ctx context.Context, accountID, currency string, amount int64) error {
	if amount <= 0 {
		return apperr.New(apperr.KindValidation, "credit amount must be positive")
	}
	t.repo.creditLocked(accountID, currency, amount)
	t.undos = append(t.undos, func() {
		// direct reversal, not a debit: the guard must not interfere
		t.repo.balances[balanceKey{accountID, currency}].Amount -= amount
	})
	return nil
}

func (t *memoryTx) MarkQuoteExecuted(ctx context.Context, quoteID string) (bool, error) {
	q, ok := t.repo.quotes[quoteID]
	if !ok || q.Status != domain.QuoteOpen {
		return false, nil
	}
	q.Status = domain.QuoteExecuted
	t.undos = append(t.undos, func() { q.Status = domain.QuoteOpen })
	return true, nil
}

func (t *memoryTx) QuoteStatus(ctx context.Context, quoteID string) (domain.QuoteStatus, error) {
	q, ok := t.repo.quotes[quoteID]
	if !ok {
		return "", errors.New("quote not found")
	}
	return q.Status, nil
}

func (t *memoryTx) SaveTrade(ctx context.Context, tr *domain.Trade) error {
	cp := *tr
	t.repo.trades = append(t.repo.trades, &cp)
	t.undos = append(t.undos, func() {
		t.repo.trades = t.repo.trades[:len(t.repo.trades)-1]
	})
	return nil
}

func (t *memoryTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("tx already finished")
	}
	t.done = true
	t.undos = nil
	t.repo.mu.Unlock()
	return nil
}

func (t *memoryTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil // rollback after commit is a no-op, like pgx
	}
	t.done = true
	for i := len(t.undos) - 1; i >= 0; i-- {
		t.undos[i]()
	}
	t.undos = nil
	t.repo.mu.Unlock()
	return nil
}
