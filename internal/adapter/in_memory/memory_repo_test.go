package in_memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/currexhq/ledger/internal/apperr"
	"github.com/currexhq/ledger/internal/domain"
)

func TestGetBalanceMissingIsZero(t *testing.T) {
	repo := NewMemoryRepo()
	v, err := repo.GetBalance(context.Background(), "acc-1", "EUR")
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestCreditUpsert(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, "acc-1", "EUR", 100))
	require.NoError(t, repo.Credit(ctx, "acc-1", "EUR", 50))

	v, err := repo.GetBalance(ctx, "acc-1", "EUR")
	require.NoError(t, err)
	require.Equal(t, int64(150), v)
}

func TestDebitGuard(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, "acc-1", "EUR", 100))

	// over the balance: rejected, row untouched
	err := repo.Debit(ctx, "acc-1", "EUR", 101)
	require.ErrorIs(t, err, apperr.ErrInsufficientBalance)
	v, err := repo.GetBalance(ctx, "acc-1", "EUR")
	require.NoError(t, err)
	require.Equal(t, int64(100), v)

	// exact balance: allowed, lands on zero
	require.NoError(t, repo.Debit(ctx, "acc-1", "EUR", 100))
	v, err = repo.GetBalance(ctx, "acc-1", "EUR")
	require.NoError(t, err)
	require.Zero(t, v)

	// absent row behaves like zero
	err = repo.Debit(ctx, "acc-1", "USDT", 1)
	require.ErrorIs(t, err, apperr.ErrInsufficientBalance)
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, "acc-1", "EUR", 100))

	for _, amount := range []int64{0, -50} {
		err := repo.Debit(ctx, "acc-1", "EUR", amount)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		err = repo.Credit(ctx, "acc-1", "EUR", amount)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	err = tx.Debit(ctx, "acc-1", "EUR", -50)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	err = tx.Credit(ctx, "acc-1", "EUR", -50)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	require.NoError(t, tx.Rollback(ctx))

	v, err := repo.GetBalance(ctx, "acc-1", "EUR")
	require.NoError(t, err)
	require.Equal(t, int64(100), v)
}

func TestConcurrentDebits(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, "acc-1", "EUR", 100))

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Debit(ctx, "acc-1", "EUR", 7)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	require.Equal(t, 14, successes)

	v, err := repo.GetBalance(ctx, "acc-1", "EUR")
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
}

func TestListBalancesOrdered(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, "acc-1", "USDT", 3))
	require.NoError(t, repo.Credit(ctx, "acc-1", "BTC", 1))
	require.NoError(t, repo.Credit(ctx, "acc-1", "EUR", 2))
	require.NoError(t, repo.Credit(ctx, "acc-2", "EUR", 9))

	bs, err := repo.ListBalances(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, bs, 3)
	require.Equal(t, "BTC", bs[0].Currency)
	require.Equal(t, "EUR", bs[1].Currency)
	require.Equal(t, "USDT", bs[2].Currency)
}

func TestQuoteOwnershipAndExpiry(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	q := &domain.Quote{
		ID:        "q-1",
		AccountID: "acc-1",
		Status:    domain.QuoteOpen,
		ExpiresAt: time.Now().Add(30 * time.Second),
	}
	require.NoError(t, repo.SaveQuote(ctx, q))

	_, err := repo.GetQuote(ctx, "acc-2", "q-1")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = repo.GetQuote(ctx, "acc-1", "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	ok, err := repo.ExpireQuote(ctx, "q-1")
	require.NoError(t, err)
	require.True(t, ok)

	// already terminal: the guarded update reports no transition
	ok, err = repo.ExpireQuote(ctx, "q-1")
	require.NoError(t, err)
	require.False(t, ok)

	got, err := repo.GetQuote(ctx, "acc-1", "q-1")
	require.NoError(t, err)
	require.Equal(t, domain.QuoteExpired, got.Status)
}

func TestGetQuoteReturnsCopy(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.SaveQuote(ctx, &domain.Quote{ID: "q-1", AccountID: "acc-1", Status: domain.QuoteOpen}))

	got, err := repo.GetQuote(ctx, "acc-1", "q-1")
	require.NoError(t, err)
	got.Status = domain.QuoteExecuted

	again, err := repo.GetQuote(ctx, "acc-1", "q-1")
	require.NoError(t, err)
	require.Equal(t, domain.QuoteOpen, again.Status)
}

func TestTxCommit(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, "acc-1", "USDT", 1000))
	require.NoError(t, repo.SaveQuote(ctx, &domain.Quote{ID: "q-1", AccountID: "acc-1", Status: domain.QuoteOpen}))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.Debit(ctx, "acc-1", "USDT", 400))
	require.NoError(t, tx.Credit(ctx, "acc-1", "EUR", 350))
	ok, err := tx.MarkQuoteExecuted(ctx, "q-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, tx.SaveTrade(ctx, &domain.Trade{ID: "t-1", AccountID: "acc-1", QuoteID: "q-1"}))
	require.NoError(t, tx.Commit(ctx))

	// rollback after commit must not undo anything
	require.NoError(t, tx.Rollback(ctx))

	usdt, err := repo.GetBalance(ctx, "acc-1", "USDT")
	require.NoError(t, err)
	require.Equal(t, int64(600), usdt)
	eur, err := repo.GetBalance(ctx, "acc-1", "EUR")
	require.NoError(t, err)
	require.Equal(t, int64(350), eur)

	q, err := repo.GetQuote(ctx, "acc-1", "q-1")
	require.NoError(t, err)
	require.Equal(t, domain.QuoteExecuted, q.Status)

	trades, err := repo.ListTrades(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, trades, 1)
}

func TestTxRollback(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Credit(ctx, "acc-1", "USDT", 1000))
	require.NoError(t, repo.SaveQuote(ctx, &domain.Quote{ID: "q-1", AccountID: "acc-1", Status: domain.QuoteOpen}))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.Debit(ctx, "acc-1", "USDT", 400))
	require.NoError(t, tx.Credit(ctx, "acc-1", "EUR", 350))
	ok, err := tx.MarkQuoteExecuted(ctx, "q-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, tx.SaveTrade(ctx, &domain.Trade{ID: "t-1", AccountID: "acc-1", QuoteID: "q-1"}))
	require.NoError(t, tx.Rollback(ctx))

	usdt, err := repo.GetBalance(ctx, "acc-1", "USDT")
	require.NoError(t, err)
	require.Equal(t, int64(1000), usdt)
	eur, err := repo.GetBalance(ctx, "acc-1", "EUR")
	require.NoError(t, err)
	require.Zero(t, eur)

	q, err := repo.GetQuote(ctx, "acc-1", "q-1")
	require.NoError(t, err)
	require.Equal(t, domain.QuoteOpen, q.Status)

	trades, err := repo.ListTrades(ctx, "acc-1")
	require.NoError(t, err)
	require.Empty(t, trades)
}

func TestTxMarkQuoteExecutedGuard(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.SaveQuote(ctx, &domain.Quote{ID: "q-1", AccountID: "acc-1", Status: domain.QuoteExpired}))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	ok, err := tx.MarkQuoteExecuted(ctx, "q-1")
	require.NoError(t, err)
	require.False(t, ok)

	status, err := tx.QuoteStatus(ctx, "q-1")
	require.NoError(t, err)
	require.Equal(t, domain.QuoteExpired, status)
	require.NoError(t, tx.Rollback(ctx))
}
