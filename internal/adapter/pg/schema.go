package pg

import (
	"context"

	"github.com/pkg/errors"
)

// The store enforces only the structural invariants: the balances uniqueness
// key and the account references. Value invariants (non-negative balance,
// one-way quote transitions) live in the component logic.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts(
  id         TEXT PRIMARY KEY,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS balances(
  account_id TEXT NOT NULL REFERENCES accounts(id),
  currency   TEXT NOT NULL,
  amount     BIGINT NOT NULL DEFAULT 0,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (account_id, currency)
);

CREATE TABLE IF NOT EXISTS quotes(
  id           TEXT PRIMARY KEY,
  account_id   TEXT NOT NULL REFERENCES accounts(id),
  base_ccy     TEXT NOT NULL,
  quote_ccy    TEXT NOT NULL,
  side         TEXT NOT NULL,
  base_amount  BIGINT NOT NULL,
  quote_amount BIGINT NOT NULL,
  price        BIGINT NOT NULL,
  status       TEXT NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL,
  expires_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS quotes_account_idx ON quotes(account_id);

CREATE TABLE IF NOT EXISTS trades(
  id           TEXT PRIMARY KEY,
  account_id   TEXT NOT NULL REFERENCES accounts(id),
  quote_id     TEXT REFERENCES quotes(id),
  type         TEXT NOT NULL,
  base_ccy     TEXT NOT NULL,
  quote_ccy    TEXT NOT NULL,
  side         TEXT NOT NULL,
  base_amount  BIGINT NOT NULL,
  quote_amount BIGINT NOT NULL,
  price        BIGINT NOT NULL,
  executed_at  TIMESTAMPTZ NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS trades_account_executed_idx ON trades(account_id, executed_at DESC);
`

// EnsureSchema creates the four row sets if they do not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schemaSQL)
	return errors.Wrap(err, "pg: ensure schema")
}
