package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/currexhq/ledger/internal/domain"
	"github.com/currexhq/ledger/internal/port"
)

var _ port.Tx = (*Tx)(nil)

// Tx runs the settlement statements on one pgx transaction. Rollback after
// a failed statement undoes every prior effect in the unit.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) Debit(ctx context.Context, accountID, currency string, amount int64) error {
	return debit(ctx, t.tx, accountID, currency, amount)
}

func (t *Tx) Credit(ctx context.Context, accountID, currency string, amount int64) error {
	return credit(ctx, t.tx, accountID, currency, amount)
}

// MarkQuoteExecuted is the serialization point for RFQ execution: of N
// concurrent transactions racing on one OPEN quote, exactly one sees a row
// affected.
func (t *Tx) MarkQuoteExecuted(ctx context.Context, quoteID string) (bool, error) {
	res, err := t.tx.Exec(ctx, `
UPDATE quotes SET status = 'EXECUTED' WHERE id = $1 AND status = 'OPEN'
`, quoteID)
	if err != nil {
		return false, errors.Wrap(err, "pg: mark quote executed")
	}
	return res.RowsAffected() > 0, nil
}

func (t *Tx) QuoteStatus(ctx context.Context, quoteID string) (domain.QuoteStatus, error) {
	var status string
	err := t.tx.QueryRow(ctx, `SELECT status FROM quotes WHERE id = $1`, quoteID).Scan(&status)
	if err != nil {
		return "", errors.Wrap(err, "pg: quote status")
	}
	return domain.QuoteStatus(status), nil
}

func (t *Tx) SaveTrade(ctx context.Context, tr *domain.Trade) error {
	var quoteID any
	if tr.QuoteID != "" {
		quoteID = tr.QuoteID
	}
	_, err := t.tx.Exec(ctx, `
INSERT INTO trades(id, account_id, quote_id, type, base_ccy, quote_ccy, side, base_amount, quote_amount, price, executed_at, created_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`, tr.ID, tr.AccountID, quoteID, string(tr.Type), tr.BaseCcy, tr.QuoteCcy, string(tr.Side),
		tr.BaseAmount, tr.QuoteAmount, tr.Price, tr.ExecutedAt, tr.CreatedAt)
	return errors.Wrap(err, "pg: save trade")
}

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
