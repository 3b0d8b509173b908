package port

import (
	"context"

	"github.com/currexhq/ledger/internal/domain"
)

// Repository is the durable store behind the ledger. Implementations must
// provide atomic conditional updates (Debit, ExpireQuote) and transactions
// with rollback-on-error (BeginTx); the engine relies on nothing else for
// concurrency correctness.
type Repository interface {
	// GetBalance returns 0 when no row exists; absence is not an error.
	GetBalance(ctx context.Context, accountID, currency string) (int64, error)
	// ListBalances returns one entry per currency the account has ever
	// held, ordered by currency.
	ListBalances(ctx context.Context, accountID string) ([]domain.Balance, error)
	// Debit decreases the balance only if it currently covers amount, as a
	// single conditional write. Fails with apperr.ErrInsufficientBalance
	// and leaves the row untouched when the guard does not hold.
	Debit(ctx context.Context, accountID, currency string, amount int64) error
	// Credit upserts the (account, currency) row, adding amount.
	Credit(ctx context.Context, accountID, currency string, amount int64) error

	SaveQuote(ctx context.Context, q *domain.Quote) error
	// GetQuote fails with apperr.ErrNotFound when the quote is absent or
	// belongs to a different account; the two cases are indistinguishable.
	GetQuote(ctx context.Context, accountID, quoteID string) (*domain.Quote, error)
	// ExpireQuote transitions OPEN -> EXPIRED as a guarded update. Returns
	// false when the quote was no longer OPEN.
	ExpireQuote(ctx context.Context, quoteID string) (bool, error)

	// GetTrade fails with apperr.ErrNotFound when absent or foreign.
	GetTrade(ctx context.Context, accountID, tradeID string) (*domain.Trade, error)
	// ListTrades returns the account's trades, most recently executed first.
	ListTrades(ctx context.Context, accountID string) ([]*domain.Trade, error)

	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is one all-or-nothing settlement unit. Everything written through it
// becomes durable on Commit or disappears on Rollback.
type Tx interface {
	Debit(ctx context.Context, accountID, currency string, amount int64) error
	Credit(ctx context.Context, accountID, currency string, amount int64) error
	// MarkQuoteExecuted transitions OPEN -> EXECUTED as a guarded update.
	// Returns false when the quote was no longer OPEN.
	MarkQuoteExecuted(ctx context.Context, quoteID string) (bool, error)
	QuoteStatus(ctx context.Context, quoteID string) (domain.QuoteStatus, error)
	SaveTrade(ctx context.Context, t *domain.Trade) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
