// Package in_memory mirrors the Postgres adapter's semantics over process
// memory: one mutex plays the role of the store's serialization, so the
// engine sees the same conditional-update and transaction guarantees in
// tests and local runs.
package in_memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/currexhq/ledger/internal/apperr"
	"github.com/currexhq/ledger/internal/domain"
	"github.com/currexhq/ledger/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

type balanceKey struct {
	accountID string
	currency  string
}

type MemoryRepo struct {
	// mu serializes every operation, transactions included: a Tx holds it
	// from BeginTx until Commit/Rollback, like a single-writer store.
	mu       sync.Mutex
	balances map[balanceKey]*domain.Balance
	quotes   map[string]*domain.Quote
	trades   []*domain.Trade
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		balances: make(map[balanceKey]*domain.Balance),
		quotes:   make(map[string]*domain.Quote),
	}
}

func (r *MemoryRepo) GetBalance(ctx context.Context, accountID, currency string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.balances[balanceKey{accountID, currency}]; ok {
		return b.Amount, nil
	}
	return 0, nil
}

func (r *MemoryRepo) ListBalances(ctx context.Context, accountID string) ([]domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []domain.Balance
	for _, b := range r.balances {
		if b.AccountID == accountID {
			res = append(res, *b)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Currency < res[j].Currency })
	return res, nil
}

func (r *MemoryRepo) Debit(ctx context.Context, accountID, currency string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.debitLocked(accountID, currency, amount)
}

func (r *MemoryRepo) Credit(ctx context.Context, accountID, currency string, amount int64) error {
	if amount <= 0 {
		return apperr.New(apperr.KindValidation, "credit amount must be positive")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creditLocked(accountID, currency, amount)
	return nil
}

// debitLocked keeps the sufficiency check and the mutation under one lock
// acquisition; there is no window for another caller to act on a stale value.
func (r *MemoryRepo) debitLocked(accountID, currency string, amount int64) error {
	if amount <= 0 {
		return apperr.New(apperr.KindValidation, "debit amount must be positive")
	}
	b, ok := r.balances[balanceKey{accountID, currency}]
	if !ok || b.Amount < amount {
		return apperr.New(apperr.KindInsufficientBalance,
			"insufficient %s balance for account %s", currency, accountID)
	}
	b.Amount -= amount
	b.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepo) creditLocked(accountID, currency string, amount int64) {
	key := balanceKey{accountID, currency}
	b, ok := r.balances[key]
	if !ok {
		b = &domain.Balance{AccountID: accountID, Currency: currency}
		r.balances[key] = b
	}
	b.Amount += amount
	b.UpdatedAt = time.Now()
}

func (r *MemoryRepo) SaveQuote(ctx context.Context, q *domain.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *q
	r.quotes[q.ID] = &cp
	return nil
}

func (r *MemoryRepo) GetQuote(ctx context.Context, accountID, quoteID string) (*domain.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[quoteID]
	if !ok || q.AccountID != accountID {
		return nil, apperr.New(apperr.KindNotFound, "quote %s not found", quoteID)
	}
	cp := *q
	return &cp, nil
}

func (r *MemoryRepo) ExpireQuote(ctx context.Context, quoteID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[quoteID]
	if !ok || q.Status != domain.QuoteOpen {
		return false, nil
	}
	q.Status = domain.QuoteExpired
	return true, nil
}

func (r *MemoryRepo) GetTrade(ctx context.Context, accountID, tradeID string) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.trades {
		if t.ID == tradeID && t.AccountID == accountID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "trade %s not found", tradeID)
}

func (r *MemoryRepo) ListTrades(ctx context.Context, accountID string) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.Trade
	for _, t := range r.trades {
		if t.AccountID == accountID {
			cp := *t
			res = append(res, &cp)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].ExecutedAt.After(res[j].ExecutedAt) })
	return res, nil
}

func (r *MemoryRepo) BeginTx(ctx context.Context) (port.Tx, error) {
	r.mu.Lock()
	return &memoryTx{repo: r}, nil
}
