package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/currexhq/ledger/internal/apperr"
	"github.com/currexhq/ledger/internal/domain"
	"github.com/currexhq/ledger/internal/port"
)

var _ port.Repository = (*Repo)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the ledger
// statements below run identically inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	pool *pgxpool.Pool
}

// call Close when finished working with the database.
func NewRepository(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "pg: create pool")
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *Repo) GetBalance(ctx context.Context, accountID, currency string) (int64, error) {
	return getBalance(ctx, r.pool, accountID, currency)
}

func (r *Repo) ListBalances(ctx context.Context, accountID string) ([]domain.Balance, error) {
	rows, err := r.pool.Query(ctx, `
SELECT account_id, currency, amount, updated_at
FROM balances
WHERE account_id = $1
ORDER BY currency ASC
`, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "pg: list balances")
	}
	defer rows.Close()

	var res []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.AccountID, &b.Currency, &b.Amount, &b.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "pg: list balances")
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (r *Repo) Debit(ctx context.Context, accountID, currency string, amount int64) error {
	return debit(ctx, r.pool, accountID, currency, amount)
}

func (r *Repo) Credit(ctx context.Context, accountID, currency string, amount int64) error {
	return credit(ctx, r.pool, accountID, currency, amount)
}

func (r *Repo) SaveQuote(ctx context.Context, q *domain.Quote) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO quotes(id, account_id, base_ccy, quote_ccy, side, base_amount, quote_amount, price, status, created_at, expires_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`, q.ID, q.AccountID, q.BaseCcy, q.QuoteCcy, string(q.Side),
		q.BaseAmount, q.QuoteAmount, q.Price, string(q.Status), q.CreatedAt, q.ExpiresAt)
	return errors.Wrap(err, "pg: save quote")
}

// GetQuote checks ownership inside the query predicate, so a foreign quote
// scans as no rows and is indistinguishable from an absent one.
func (r *Repo) GetQuote(ctx context.Context, accountID, quoteID string) (*domain.Quote, error) {
	var q domain.Quote
	var side, status string
	err := r.pool.QueryRow(ctx, `
SELECT id, account_id, base_ccy, quote_ccy, side, base_amount, quote_amount, price, status, created_at, expires_at
FROM quotes
WHERE id = $1 AND account_id = $2
`, quoteID, accountID).Scan(&q.ID, &q.AccountID, &q.BaseCcy, &q.QuoteCcy, &side,
		&q.BaseAmount, &q.QuoteAmount, &q.Price, &status, &q.CreatedAt, &q.ExpiresAt)
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "quote %s not found", quoteID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "pg: get quote")
	}
	q.Side = domain.Side(side)
	q.Status = domain.QuoteStatus(status)
	return &q, nil
}

func (r *Repo) ExpireQuote(ctx context.Context, quoteID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
UPDATE quotes SET status = 'EXPIRED' WHERE id = $1 AND status = 'OPEN'
`, quoteID)
	if err != nil {
		return false, errors.Wrap(err, "pg: expire quote")
	}
	return res.RowsAffected() > 0, nil
}

func (r *Repo) GetTrade(ctx context.Context, accountID, tradeID string) (*domain.Trade, error) {
	t, err := scanTrade(r.pool.QueryRow(ctx, selectTrade+`
WHERE id = $1 AND account_id = $2
`, tradeID, accountID))
	if err == pgx.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "trade %s not found", tradeID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "pg: get trade")
	}
	return t, nil
}

func (r *Repo) ListTrades(ctx context.Context, accountID string) ([]*domain.Trade, error) {
	rows, err := r.pool.Query(ctx, selectTrade+`
WHERE account_id = $1
ORDER BY executed_at DESC, created_at DESC
`, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "pg: list trades")
	}
	defer rows.Close()

	var res []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, errors.Wrap(err, "pg: list trades")
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *Repo) BeginTx(ctx context.Context) (port.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "pg: begin tx")
	}
	return &Tx{tx: tx}, nil
}

// getBalance reports 0 for a missing row; a balance only exists once the
// account has been credited in that currency.
func getBalance(ctx context.Context, q querier, accountID, currency string) (int64, error) {
	var amount int64
	err := q.QueryRow(ctx, `
SELECT amount FROM balances WHERE account_id = $1 AND currency = $2
`, accountID, currency).Scan(&amount)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "pg: get balance")
	}
	return amount, nil
}

// debit is the load-bearing statement of the whole ledger: the sufficiency
// check lives in the UPDATE predicate, so check and mutation are one atomic
// write and concurrent debits against the same row serialize in the store.
func debit(ctx context.Context, q querier, accountID, currency string, amount int64) error {
	if amount <= 0 {
		return apperr.New(apperr.KindValidation, "debit amount must be positive")
	}
	res, err := q.Exec(ctx, `
UPDATE balances
SET amount = amount - $3, updated_at = now()
WHERE account_id = $1 AND currency = $2 AND amount >= $3
`, accountID, currency, amount)
	if err != nil {
		return errors.Wrap(err, "pg: debit")
	}
	if res.RowsAffected() == 0 {
		return apperr.New(apperr.KindInsufficientBalance,
			"insufficient %s balance for account %s", currency, accountID)
	}
	return nil
}

func credit(ctx context.Context, q querier, accountID, currency string, amount int64) error {
	if amount <= 0 {
		return apperr.New(apperr.KindValidation, "credit amount must be positive")
	}
	_, err := q.Exec(ctx, `
INSERT INTO balances(account_id, currency, amount, updated_at)
VALUES($1,$2,$3,now())
ON CONFLICT (account_id, currency) DO UPDATE SET
  amount = balances.amount + EXCLUDED.amount,
  updated_at = now()
`, accountID, currency, amount)
	return errors.Wrap(err, "pg: credit")
}

const selectTrade = `
SELECT id, account_id, COALESCE(quote_id, ''), type, base_ccy, quote_ccy, side,
       base_amount, quote_amount, price, executed_at, created_at
FROM trades
`

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	var typ, side string
	err := row.Scan(&t.ID, &t.AccountID, &t.QuoteID, &typ, &t.BaseCcy, &t.QuoteCcy, &side,
		&t.BaseAmount, &t.QuoteAmount, &t.Price, &t.ExecutedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Type = domain.TradeType(typ)
	t.Side = domain.Side(side)
	return &t, nil
}
