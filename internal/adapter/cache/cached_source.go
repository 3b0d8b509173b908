package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/currexhq/ledger/internal/domain"
	"github.com/currexhq/ledger/internal/port"
)

var _ port.PriceSource = (*CachedPriceSource)(nil)

// CachedPriceSource decorates a price source with a short-TTL cache for
// market prices. Execution prices are never cached: a quote is itself the
// price lock, so serving it a stale input would double the staleness.
// Cache failures degrade to the upstream source, never to an error.
type CachedPriceSource struct {
	src   port.PriceSource
	cache port.PriceCache
	log   *zap.Logger
}

func NewCachedPriceSource(src port.PriceSource, cache port.PriceCache, log *zap.Logger) *CachedPriceSource {
	return &CachedPriceSource{src: src, cache: cache, log: log}
}

func (c *CachedPriceSource) ExecutionPrice(ctx context.Context, pair domain.Pair, side domain.Side) (int64, error) {
	return c.src.ExecutionPrice(ctx, pair, side)
}

func (c *CachedPriceSource) MarketPrice(ctx context.Context, pair domain.Pair) (int64, error) {
	symbol := pair.Symbol()
	if price, ok, err := c.cache.GetPrice(ctx, symbol); err != nil {
		c.log.Warn("price cache read failed", zap.String("symbol", symbol), zap.Error(err))
	} else if ok {
		return price, nil
	}

	price, err := c.src.MarketPrice(ctx, pair)
	if err != nil {
		return 0, err
	}
	if err := c.cache.SetPrice(ctx, symbol, price); err != nil {
		c.log.Warn("price cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return price, nil
}
