package port

import (
	"context"

	"github.com/currexhq/ledger/internal/domain"
)

// PriceSource resolves execution prices from upstream market data. Prices
// are scaled 10^8, base -> quote. Both methods propagate a price-unavailable
// condition (apperr.KindPriceUnavailable); the engine never masks it.
type PriceSource interface {
	// ExecutionPrice returns the price a quote locks in: ask side plus
	// spread markup for BUY, bid side minus markup for SELL.
	ExecutionPrice(ctx context.Context, pair domain.Pair, side domain.Side) (int64, error)
	// MarketPrice returns the current mid-style price with no markup,
	// used for market orders.
	MarketPrice(ctx context.Context, pair domain.Pair) (int64, error)
}
